// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package raster

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]string // name -> resolved path
	runErr        error
	calls         [][]string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if p, ok := m.availableBins[file]; ok {
		return p, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Run(name string, args []string, stdout, stderr io.Writer) error {
	m.calls = append(m.calls, append([]string{name}, args...))
	io.WriteString(stdout, "GPL Ghostscript\n")
	return m.runErr
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		bins    map[string]string
		bin     string
		want    string
		wantErr bool
	}{
		{
			name: "default binary on PATH",
			bins: map[string]string{"gs": "/usr/bin/gs"},
			want: "/usr/bin/gs",
		},
		{
			name: "override",
			bins: map[string]string{"gs": "/usr/bin/gs", "/opt/gs/bin/gswin64c": "/opt/gs/bin/gswin64c"},
			bin:  "/opt/gs/bin/gswin64c",
			want: "/opt/gs/bin/gswin64c",
		},
		{
			name:    "missing default",
			bins:    map[string]string{},
			wantErr: true,
		},
		{
			name:    "missing override does not fall back",
			bins:    map[string]string{"gs": "/usr/bin/gs"},
			bin:     "gs9",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := resolve(&mockExecutor{availableBins: tt.bins}, tt.bin)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Bin)
		})
	}
}

func TestArgs(t *testing.T) {
	args := Args("/in/vol2.pdf", "derived", "vol2")
	assert.Equal(t, []string{
		"-sDEVICE=png16m",
		"-r600",
		"-dDownScaleFactor=4",
		"-sOutputFile=" + filepath.Join("derived", "vol2-%d.png"),
		"-dNOPAUSE",
		"-dBATCH",
		"/in/vol2.pdf",
	}, args)
}

func TestPagePath(t *testing.T) {
	assert.Equal(t, filepath.Join("derived", "vol2-17.png"), PagePath("derived", "vol2", 17))
}

func TestRender(t *testing.T) {
	m := &mockExecutor{availableBins: map[string]string{"gs": "/usr/bin/gs"}}
	r, err := resolve(m, "")
	require.NoError(t, err)

	var out strings.Builder
	r.Output = &out
	dir := filepath.Join(t.TempDir(), "derived")

	require.NoError(t, r.Render("vol2.pdf", dir, "vol2"))

	require.Len(t, m.calls, 1)
	assert.Equal(t, "/usr/bin/gs", m.calls[0][0])
	assert.Equal(t, "vol2.pdf", m.calls[0][len(m.calls[0])-1])
	assert.DirExists(t, dir)
	assert.Contains(t, out.String(), "Ghostscript")
}

func TestRender_Failure(t *testing.T) {
	m := &mockExecutor{
		availableBins: map[string]string{"gs": "/usr/bin/gs"},
		runErr:        errors.New("exit status 1"),
	}
	r, err := resolve(m, "gs")
	require.NoError(t, err)

	err = r.Render("broken.pdf", t.TempDir(), "broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFailed)
	assert.Contains(t, err.Error(), "broken.pdf")
}
