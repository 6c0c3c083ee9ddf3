package domain

import "encoding/base64"

// Image is a file the user selected. It lives only in memory for the
// duration of a session step.
type Image struct {
	Name     string
	MimeType string
	Data     []byte
}

// Base64 returns the transport encoding of the image bytes.
func (i *Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURL returns the image as a data: URL, e.g. for OpenAI image parts.
func (i *Image) DataURL() string {
	return "data:" + i.MimeType + ";base64," + i.Base64()
}

// State is the transient display state owned by a controller.
type State struct {
	Image      *Image
	PreviewURL string
	Prompt     string
	Loading    bool
	Error      string
	Copied     bool
}

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSelecting
	PhaseGenerating
	PhaseDisplaying
	PhaseErrored
)

func (p Phase) String() string {
	switch p {
	case PhaseSelecting:
		return "selecting"
	case PhaseGenerating:
		return "generating"
	case PhaseDisplaying:
		return "displaying"
	case PhaseErrored:
		return "errored"
	default:
		return "idle"
	}
}

// Phase derives the controller phase from the state record.
func (s State) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseGenerating
	case s.Error != "":
		return PhaseErrored
	case s.Prompt != "":
		return PhaseDisplaying
	case s.Image != nil:
		return PhaseSelecting
	default:
		return PhaseIdle
	}
}

// CanGenerate reports whether the generate action is enabled.
func (s State) CanGenerate() bool {
	return s.Image != nil && !s.Loading
}

type OutcomeStatus int

const (
	OutcomePending OutcomeStatus = iota
	OutcomeSuccess
	OutcomeFailure
)

// Outcome is the result of one generate action.
type Outcome struct {
	Status  OutcomeStatus
	Text    string
	Message string
}
