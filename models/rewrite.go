package models

// InstrumentBlock is a run of script lines defining one instrument.
// Line numbers are 0-based and inclusive.
type InstrumentBlock struct {
	ID        string `json:"id"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	HasParens bool   `json:"hasParens"`
	Enabled   bool   `json:"enabled"`
}

// RewriteResult is the preprocessed script plus a summary of what changed
type RewriteResult struct {
	Script           string            `json:"script"`
	GainRewrites     int               `json:"gainRewrites"`
	TempoRewrites    int               `json:"tempoRewrites"`
	TemplateRewrites int               `json:"templateRewrites"`
	MutedBlocks      []InstrumentBlock `json:"mutedBlocks"`
}
