package script

// UpsertRequest represents the request to create or replace the script for
// one language of a slide
type UpsertRequest struct {
	Lang string `json:"lang" validate:"required,min=2,max=16"`
	Text string `json:"text" validate:"required"`
}

// SynthesizeRequest represents the request to render a language's script to
// narrated audio
type SynthesizeRequest struct {
	Lang  string `json:"lang" validate:"required,min=2,max=16"`
	Voice string `json:"voice,omitempty" validate:"omitempty,max=64"`
}

// TranslateRequest represents the request to translate a script between
// languages
type TranslateRequest struct {
	SourceLang string `json:"source_lang" validate:"required,min=2,max=16"`
	TargetLang string `json:"target_lang" validate:"required,min=2,max=16,nefield=SourceLang"`
}
