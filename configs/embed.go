// Package configs embeds the example configuration template.
//
// The template is compiled into the binary so 'scoutmcp config init' can
// write a commented starter file in any installation, including ones
// built with plain 'go install'. To change the template, edit the .yaml
// file here and rebuild.
package configs

import _ "embed"

// ExampleConfig is the commented starter configuration written by
// 'scoutmcp config init' to ~/.scoutmcp.yaml. It documents every key
// and its SCOUTMCP_* environment override.
//
//go:embed scoutmcp.example.yaml
var ExampleConfig string
