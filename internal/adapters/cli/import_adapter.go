package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/example/safer/internal/ports/primary"
	"github.com/example/safer/internal/ports/secondary"
)

// ImportAdapter translates import commands to ImportService calls.
type ImportAdapter struct {
	service primary.ImportService
	out     io.Writer
	json    bool
}

// NewImportAdapter creates a new ImportAdapter.
func NewImportAdapter(service primary.ImportService, out io.Writer, asJSON bool) *ImportAdapter {
	return &ImportAdapter{
		service: service,
		out:     out,
		json:    asJSON,
	}
}

// Import runs an import, or a preview when dryRun is set.
func (a *ImportAdapter) Import(ctx context.Context, req primary.ImportRequest, dryRun bool) error {
	run := a.service.Import
	if dryRun {
		run = a.service.Preview
	}

	result, err := run(ctx, req)
	if err != nil {
		// The WIP-limit result still carries counts worth printing.
		if result != nil && errors.Is(err, secondary.ErrWipLimitExceeded) && a.json {
			if werr := writeJSON(a.out, result); werr != nil {
				return werr
			}
		}
		return err
	}

	if a.json {
		return writeJSON(a.out, result)
	}

	if result.Note != "" {
		fmt.Fprintf(a.out, "%s\n", result.Note)
	}
	for _, d := range result.Items {
		mark := okMark
		if result.DryRun {
			mark = "+"
		}
		fmt.Fprintf(a.out, "%s %s [slot %d] %s\n", mark, d.ID, d.Constraints.WipSlot, d.Title())
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(a.out, "%s %s\n", warnMark, w)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(a.out, "%s %s\n", errMark, e)
	}
	if !result.DryRun {
		fmt.Fprintf(a.out, "Imported %d, skipped %d\n", result.Imported, result.Skipped)
	}
	return nil
}
