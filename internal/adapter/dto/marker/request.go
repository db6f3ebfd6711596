package marker

// CreateFromWordRequest represents the request to create a marker from a
// clicked word in one language's script
type CreateFromWordRequest struct {
	Lang      string `json:"lang" validate:"required,min=2,max=16"`
	CharStart int    `json:"char_start" validate:"min=0"`
	CharEnd   int    `json:"char_end" validate:"gtfield=CharStart"`
	WordText  string `json:"word_text" validate:"required,max=255"`
	Name      string `json:"name,omitempty" validate:"omitempty,max=255"`
}

// PropagateRequest represents the request to copy marker positions from one
// language to another
type PropagateRequest struct {
	SourceLang string `json:"source_lang" validate:"required,min=2,max=16"`
	TargetLang string `json:"target_lang" validate:"required,min=2,max=16,nefield=SourceLang"`
}

// RecomputeTimesRequest represents the request to refresh marker times from
// a language's word timings
type RecomputeTimesRequest struct {
	Lang string `json:"lang" validate:"required,min=2,max=16"`
}

// InsertTokensRequest represents the request to embed marker tokens into a
// language's script text
type InsertTokensRequest struct {
	Lang string `json:"lang" validate:"required,min=2,max=16"`
}

// MigrateRequest represents the request to upgrade legacy word triggers to
// global markers
type MigrateRequest struct {
	BaseLang string `json:"base_lang" validate:"required,min=2,max=16"`
}
