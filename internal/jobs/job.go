package jobs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"vidgen/internal/services"
)

// Status is the lifecycle state of a job as recorded by the queue.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRendering Status = "rendering"
	StatusDone      Status = "done"
	StatusError     Status = "error"
)

// IsTerminal reports whether the status ends a job's lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusError
}

// RandomVoice is the tts value that requests a catalog pick. A null or empty
// tts means the configured default voice.
const RandomVoice = "random"

// Part is the ordinal of a job within its series. The queue sends it either
// as a JSON number or as a numeric string.
type Part int

func (p *Part) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*p = 0
			return nil
		}
		data = []byte(s)
	}
	text := string(data)
	if n, err := strconv.Atoi(text); err == nil {
		if n > math.MaxInt32 || n < math.MinInt32 {
			return fmt.Errorf("part: %s is out of range", text)
		}
		*p = Part(n)
		return nil
	}
	// JSON encoders may send whole numbers as 3.0 or 3e0.
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("part: %q is not a number", text)
	}
	if n != math.Trunc(n) {
		return fmt.Errorf("part: %s is not a whole number", text)
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return fmt.Errorf("part: %s is out of range", text)
	}
	*p = Part(n)
	return nil
}

// Job is one queued render request.
type Job struct {
	ID            string `json:"_id" validate:"required"`
	Language      string `json:"language" validate:"required"`
	BackgroundURL string `json:"background_url" validate:"omitempty,url"`
	Voice         string `json:"tts"`
	Gender        string `json:"gender"`
	Series        string `json:"series" validate:"required"`
	Part          Part   `json:"part" validate:"gte=0"`
	Text          string `json:"text" validate:"required"`
	Outro         string `json:"outro"`
	Status        Status `json:"status,omitempty"`
}

// WantsRandomVoice reports whether the job leaves voice choice to the catalog.
func (j Job) WantsRandomVoice() bool {
	return strings.EqualFold(strings.TrimSpace(j.Voice), RandomVoice)
}

// VoiceOr returns the job's explicit voice, or fallback when tts was null or
// empty. It is meaningless for random requests.
func (j Job) VoiceOr(fallback string) string {
	if voice := strings.TrimSpace(j.Voice); voice != "" {
		return voice
	}
	return strings.TrimSpace(fallback)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the payload fields the pipeline depends on.
func (j Job) Validate() error {
	err := validate.Struct(j)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return services.Wrap(services.ErrValidation, "queue", "validate job", "invalid job payload", err)
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return services.Wrap(services.ErrValidation, "queue", "validate job",
		"invalid job payload: "+strings.Join(problems, ", "), nil)
}
