package ingest

// Lead fields a spreadsheet column can map to.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPhone           = "phone"
	FieldRole            = "role"
	FieldCompany         = "company"
	FieldLinkedInURL     = "linkedin_url"
	FieldLocation        = "location"
	FieldSkills          = "skills"
	FieldExperienceYears = "experience_years"
	FieldNotes           = "notes"
)

// Multi-line and long headings of the lead tracking sheet.
const (
	LocationHeader     = "Location\n(Where GCC center is opening.\nIf 2 locations, one is HQ one is GCC)"
	RelationshipHeader = "Category\n(By level of relationship)"
	InviteSentHeader   = "Message, invite sent for lead generation only (Yes/No/Doubtful)"
)

// HeaderMapping renames spreadsheet headers, matched exactly, to lead fields. Columns
// mapping to fields the lead does not store are recognised but ignored.
var HeaderMapping = map[string]string{
	"Name":                     FieldName,
	"Linkedin Link":            FieldLinkedInURL,
	"Designation":              FieldRole,
	"Linkedin About":           FieldNotes,
	"Company Name":             FieldCompany,
	LocationHeader:             FieldLocation,
	"Company Headquarters":     "company_hq",
	"Category":                 "category",
	"Expansion Type":           "expansion_type",
	"Comments":                 "comments",
	"Email":                    FieldEmail,
	"Phone":                    FieldPhone,
	RelationshipHeader:         "relationship_category",
	InviteSentHeader:           "invite_sent",
	"MB Connection Level":      "connection_level",
	"Relevant":                 "relevant",
	"Phone Number sent to sir": "phone_sent",
	"Response":                 "response",
	"Remarks":                  "remarks",
	"Original Sheet":           "original_sheet",

	// Headers written by the exporter, so exported files import again.
	FieldName:            FieldName,
	FieldRole:            FieldRole,
	FieldCompany:         FieldCompany,
	FieldLinkedInURL:     FieldLinkedInURL,
	FieldLocation:        FieldLocation,
	FieldEmail:           FieldEmail,
	FieldPhone:           FieldPhone,
	FieldSkills:          FieldSkills,
	FieldExperienceYears: FieldExperienceYears,
	FieldNotes:           FieldNotes,
}

// columnIndex maps lead fields to the position of their column in the header row.
// The first column mapping to a field wins.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int)
	for i, h := range header {
		field, ok := HeaderMapping[h]
		if !ok {
			continue
		}
		if _, seen := idx[field]; !seen {
			idx[field] = i
		}
	}
	return idx
}
