// Package sasa computes per-atom solvent exposure with MSMS.
package sasa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/tikz/corefeatures/pdb"
)

// waitDelay bounds how long a killed tool may keep its output pipes open.
const waitDelay = 2 * time.Second

// Exposer returns one solvent exposure value per atom of a structure, in atom order.
type Exposer interface {
	Exposure(ctx context.Context, p *pdb.PDB) ([]float64, error)
}

// MSMS runs the pdb_to_xyzr converter and the msms binary on a structure.
type MSMS struct {
	binDir     string
	pdbToXYZR  string
	msms       string
	scratchDir string
	timeout    time.Duration
}

// NewMSMS instantiates the required paths for MSMS.
// Both executables are resolved against binDir when relative, and are run with binDir
// as working directory so pdb_to_xyzr finds its atom type tables.
// Temporary files are created under scratchDir, or the system temp dir when empty.
func NewMSMS(binDir, pdbToXYZR, msms, scratchDir string, timeout time.Duration) (m *MSMS, err error) {
	m = &MSMS{timeout: timeout}
	if m.binDir, err = filepath.Abs(binDir); err != nil {
		return nil, err
	}

	resolve := func(exe string) (string, error) {
		if !filepath.IsAbs(exe) {
			exe = filepath.Join(m.binDir, exe)
		}
		info, err := os.Stat(exe)
		if err != nil {
			return "", err
		}
		if info.IsDir() {
			return "", fmt.Errorf("%s is a dir", exe)
		}
		return exe, nil
	}

	if m.pdbToXYZR, err = resolve(pdbToXYZR); err != nil {
		return nil, err
	}
	if m.msms, err = resolve(msms); err != nil {
		return nil, err
	}

	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	if m.scratchDir, err = filepath.Abs(scratchDir); err != nil {
		return nil, err
	}
	if err = os.MkdirAll(m.scratchDir, os.ModePerm); err != nil {
		return nil, err
	}

	return m, nil
}

// Exposure runs MSMS on the structure and returns the SES area of each atom.
// All intermediate files live in a private directory that is removed before returning.
func (m *MSMS) Exposure(ctx context.Context, p *pdb.PDB) ([]float64, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	dir, err := os.MkdirTemp(m.scratchDir, p.ID+"-*")
	if err != nil {
		return nil, &ToolError{Step: "scratch", Err: err}
	}
	defer os.RemoveAll(dir)

	pdbFile := filepath.Join(dir, p.ID+".pdb")
	xyzrFile := filepath.Join(dir, p.ID+".xyzr")
	areaBase := filepath.Join(dir, p.ID)

	if err := p.WriteFile(pdbFile); err != nil {
		return nil, &ToolError{Step: "scratch", Err: err}
	}

	if err := m.xyzr(ctx, pdbFile, xyzrFile); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, m.msms, "-if", xyzrFile, "-af", areaBase)
	cmd.Dir = m.binDir
	cmd.WaitDelay = waitDelay
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, &ToolError{Step: "msms", Output: string(out), Err: contextErr(ctx, err)}
	}

	f, err := os.Open(areaBase + ".area")
	if err != nil {
		return nil, &ToolError{Step: "msms", Output: string(out), Err: err}
	}
	defer f.Close()

	values, err := ParseArea(f)
	if err != nil {
		return nil, &ToolError{Step: "area", Err: err}
	}

	if len(values) != len(p.Atoms) {
		return nil, &AlignmentError{Atoms: len(p.Atoms), Values: len(values)}
	}

	return values, nil
}

// xyzr converts the structure to MSMS xyzr format, writing the converter stdout to dest.
func (m *MSMS) xyzr(ctx context.Context, pdbFile, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return &ToolError{Step: "pdb_to_xyzr", Err: err}
	}
	defer out.Close()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, m.pdbToXYZR, pdbFile)
	cmd.Dir = m.binDir
	cmd.Stdout = out
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		return &ToolError{Step: "pdb_to_xyzr", Output: stderr.String(), Err: contextErr(ctx, err)}
	}

	info, err := out.Stat()
	if err != nil {
		return &ToolError{Step: "pdb_to_xyzr", Err: err}
	}
	if info.Size() == 0 {
		return &ToolError{Step: "pdb_to_xyzr", Output: stderr.String(), Err: errors.New("empty output")}
	}

	return nil
}

// contextErr prefers the context error, so a killed process reports the timeout.
func contextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
