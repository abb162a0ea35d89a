package workers

import (
	"encoding/json"
	"fmt"
	"io"
)

// extractRequest is written by the parent to the child's stdin.
type extractRequest struct {
	FileName string `json:"file_name"`
	Data     []byte `json:"data"`
}

// extractResponse is written by the child to stdout.
type extractResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// RunExtractWorker is the child side of the extraction process: it reads one
// request from r, extracts the text and writes one response to w.
// Parser failures are reported in the response, not as the returned error.
func RunExtractWorker(r io.Reader, w io.Writer) error {
	var req extractRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("decode extract request: %w", err)
	}

	var resp extractResponse
	text, err := ExtractText(req.FileName, req.Data)
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.Text = text
	}

	return json.NewEncoder(w).Encode(resp)
}
