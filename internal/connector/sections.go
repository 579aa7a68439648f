package connector

import "fmt"

// SectionID names an entry of the configuration sidebar.
type SectionID string

// Sidebar sections, in display order.
const (
	SectionDataConnector     SectionID = "data-connector"
	SectionSchemaEnrichment  SectionID = "schema-enrichment"
	SectionPromptSetup       SectionID = "prompt-setup"
	SectionTrainingConsole   SectionID = "training-console"
	SectionGenerationConfigs SectionID = "generation-configs"
)

// Section describes a sidebar entry. Only the data connector has a form;
// the others render their placeholder body.
type Section struct {
	ID          SectionID
	Title       string
	Description string
	Body        string
}

var sections = []Section{
	{SectionDataConnector, "Data Connector", "Data Connector description", ""},
	{SectionSchemaEnrichment, "Schema Enrichment", "Table Schema description", "Table Schema description content goes here."},
	{SectionPromptSetup, "Prompt Setup", "Prompt Components description", "Prompt Components description content goes here."},
	{SectionTrainingConsole, "Training Console", "Dynamic Examples description", "Dynamic Examples description content goes here."},
	{SectionGenerationConfigs, "Generation Configs", "Review & Create API description", "Review & Create API description content goes here."},
}

// Sections returns the sidebar entries in display order.
func Sections() []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

// LookupSection returns the section with the given id.
func LookupSection(id SectionID) (Section, error) {
	for _, s := range sections {
		if s.ID == id {
			return s, nil
		}
	}
	return Section{}, fmt.Errorf("unknown configuration section %q", id)
}
