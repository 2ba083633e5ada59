/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package oracle

// registry maps short model names to their serving endpoints. Config values
// may use either form; unknown names pass through as endpoint names.
var registry = map[string]string{
	"gpt_oss_120b":      "databricks-gpt-oss-120b",
	"claude_sonnet_3_7": "databricks-claude-3-7-sonnet",
	"claude_sonnet_4":   "databricks-claude-sonnet-4",
	"claude_sonnet_4_5": "databricks-claude-sonnet-4-5",
	"llama4_maverick":   "databricks-llama-4-maverick",
	"claude_opus_4":     "databricks-claude-opus-4",
	"llama3_3_70b":      "databricks-meta-llama-3-3-70b-instruct",
}

// ResolveEndpoint maps a short model name to its serving endpoint. Anything
// not in the registry is treated as an endpoint name already.
func ResolveEndpoint(nameOrEndpoint string) string {
	if endpoint, ok := registry[nameOrEndpoint]; ok {
		return endpoint
	}
	return nameOrEndpoint
}
