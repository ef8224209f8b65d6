package domain

// TextField is a resolved text value. Found=false means no candidate path
// produced a non-empty value; a found field is never empty.
type TextField struct {
	Value string `json:"value"`
	Found bool   `json:"found"`
}

func Present(value string) TextField {
	return TextField{Value: value, Found: true}
}

func (f TextField) String() string {
	return f.Value
}

// ExtractedRecord is the result of parsing one filing. Revenue is always
// finite and defaults to 0 when no numeric candidate parsed.
type ExtractedRecord struct {
	SourceID         string    `json:"source_id"`
	OrganizationName TextField `json:"organization_name"`
	MissionText      TextField `json:"mission_text"`
	Revenue          float64   `json:"revenue"`
}

// FieldPaths holds the ordered candidate xpath expressions per field.
type FieldPaths struct {
	Name    []string `yaml:"name" json:"name"`
	Mission []string `yaml:"mission" json:"mission"`
	Revenue []string `yaml:"revenue" json:"revenue"`
}

func DefaultFieldPaths() FieldPaths {
	return FieldPaths{
		Name: []string{
			"/Return/ReturnHeader/Filer/BusinessName/BusinessNameLine1Txt",
			"/Return/ReturnHeader/Filer/BusinessName/BusinessNameLine1",
			"/Return/ReturnHeader/Filer/Name/BusinessNameLine1",
		},
		Mission: []string{
			"/Return/ReturnData/IRS990/MissionDesc",
			"//MissionDesc",
			"//ActivityOrMissionDesc",
			"//PrimaryExemptPurposeTxt",
			"//Desc",
		},
		Revenue: []string{
			"/Return/ReturnData/IRS990/TotalRevenueCurrentYear",
			"/Return/ReturnData/IRS990/TotalRevenue",
			"/Return/ReturnData/IRS990/CYTotalRevenueAmt",
			"/Return/ReturnData/IRS990/RevenueAmt",
		},
	}
}

// LabeledRecord pairs an extracted record with the classifier's label.
type LabeledRecord struct {
	ExtractedRecord
	Label string `json:"label"`
}

// RankQuery selects records whose mission matches Keyword and keeps the TopK
// largest by revenue.
type RankQuery struct {
	Keyword string `json:"keyword"`
	TopK    int    `json:"top_k"`
}
