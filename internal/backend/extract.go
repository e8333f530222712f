package backend

import (
	"bytes"
	"encoding/json"
)

// ExtractAnswer pulls the assistant's reply out of a raw /chat payload.
//
// The answering service's response shape has drifted across backend
// versions, so extraction degrades through a fixed precedence instead of
// failing: `final_response.answer`, then a top-level `answer`, then
// `final_response` itself, and finally the whole payload re-serialized.
func ExtractAnswer(payload []byte) string {
	var body struct {
		FinalResponse json.RawMessage `json:"final_response"`
		Answer        json.RawMessage `json:"answer"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return string(payload)
	}

	if present(body.FinalResponse) {
		var nested struct {
			Answer json.RawMessage `json:"answer"`
		}
		if err := json.Unmarshal(body.FinalResponse, &nested); err == nil && present(nested.Answer) {
			if text := asText(nested.Answer); text != "" {
				return text
			}
		}
	}
	if present(body.Answer) {
		if text := asText(body.Answer); text != "" {
			return text
		}
	}
	if present(body.FinalResponse) {
		if text := asText(body.FinalResponse); text != "" {
			return text
		}
	}

	return compact(payload)
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// asText unquotes JSON strings; any other JSON value is rendered verbatim.
func asText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func compact(payload []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, payload); err != nil {
		return string(payload)
	}
	return buf.String()
}
