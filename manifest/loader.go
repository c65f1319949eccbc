package manifest

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/mobisoftinfotech/aipype/ctxlog"
)

// Loader parses HCL manifest files into the agnostic model.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a Loader with a fresh parser.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// LoadFile parses and translates a single manifest file.
func (l *Loader) LoadFile(ctx context.Context, filePath string) (*File, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing manifest file.", "path", filePath)

	hclFile, diags := l.parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest file %s: %w", filePath, diags)
	}
	return l.decode(ctx, hclFile.Body, filePath)
}

// Parse parses and translates manifest source held in memory. The
// filename is used in diagnostics only.
func (l *Loader) Parse(ctx context.Context, src []byte, filename string) (*File, error) {
	hclFile, diags := l.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", filename, diags)
	}
	return l.decode(ctx, hclFile.Body, filename)
}

func (l *Loader) decode(ctx context.Context, body hcl.Body, filename string) (*File, error) {
	var raw fileSchema
	if diags := gohcl.DecodeBody(body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", filename, diags)
	}
	return l.translateFile(ctx, &raw)
}
