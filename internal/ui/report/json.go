package report

import "encoding/json"

func RenderJSON(env Envelope) ([]byte, error) {
	return json.MarshalIndent(env, "", "  ")
}
