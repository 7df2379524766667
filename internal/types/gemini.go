package types

// EmbeddingRequest is the Gemini embedContent request body.
type EmbeddingRequest struct {
	Model                string           `json:"model"`
	Content              EmbeddingContent `json:"content"`
	TaskType             string           `json:"taskType,omitempty"`
	OutputDimensionality int              `json:"outputDimensionality,omitempty"`
}

type EmbeddingContent struct {
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

// EmbeddingResponse is the Gemini embedContent response body.
type EmbeddingResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}
