package api

import "github.com/samcharles93/charseed/internal/model"

type GenerationRequest struct {
	Seed        *string  `json:"seed,omitempty"`
	Steps       *int     `json:"steps,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	RNGSeed     *int64   `json:"rng_seed,omitempty"`
	Strict      *bool    `json:"strict,omitempty"`
	Stream      *bool    `json:"stream,omitempty"`
}

type Generation struct {
	ID          string         `json:"id"`
	Object      string         `json:"object"`
	CreatedAt   int64          `json:"created_at"`
	Status      string         `json:"status"`
	Seed        string         `json:"seed"`
	Text        string         `json:"text"`
	ElapsedMS   float64        `json:"elapsed_ms"`
	Steps       int            `json:"steps"`
	Temperature float64        `json:"temperature"`
	StatusLine  string         `json:"status_line,omitempty"`
	Error       *ResponseError `json:"error,omitempty"`
}

const (
	generationInProgress = "in_progress"
	generationCompleted  = "completed"
	generationFailed     = "failed"
)

type GenerationList struct {
	Object string       `json:"object"`
	Data   []Generation `json:"data"`
}

type DeleteGenerationResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

type StatusResponse struct {
	Status      string          `json:"status"`
	ModelPath   string          `json:"model_path,omitempty"`
	Available   bool            `json:"available"`
	Loaded      bool            `json:"loaded"`
	Model       *model.Metadata `json:"model"`
	Fingerprint string          `json:"fingerprint,omitempty"`
}

type LoadModelResponse struct {
	Status      string         `json:"status"`
	Model       model.Metadata `json:"model"`
	Fingerprint string         `json:"fingerprint"`
}

type SeedResponse struct {
	Seed string `json:"seed"`
}
