package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const latestPath = "/repos/abhisek/skiquiz/releases/latest"

func TestAssetNameFor(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
		wantErr      bool
	}{
		{"darwin", "arm64", "skiquiz_Darwin_all.tar.gz", false},
		{"darwin", "amd64", "skiquiz_Darwin_all.tar.gz", false},
		{"linux", "amd64", "skiquiz_Linux_x86_64.tar.gz", false},
		{"linux", "386", "skiquiz_Linux_i386.tar.gz", false},
		{"windows", "arm64", "skiquiz_Windows_arm64.zip", false},
		{"plan9", "amd64", "", true},
		{"linux", "riscv64", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := assetNameFor(tt.goos, tt.goarch)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseChecksums(t *testing.T) {
	got := parseChecksums([]byte("abc  skiquiz_Linux_x86_64.tar.gz\nnoise\n\nx y z\ndef  checksums.sig\n"))
	assert.Equal(t, map[string]string{
		"skiquiz_Linux_x86_64.tar.gz": "abc",
		"checksums.sig":               "def",
	}, got)
}

func TestVerifyChecksum(t *testing.T) {
	data := []byte("powder day")
	sum := sha256.Sum256(data)

	assert.NoError(t, verifyChecksum(data, hex.EncodeToString(sum[:])))
	assert.NoError(t, verifyChecksum(data, strings.ToUpper(hex.EncodeToString(sum[:]))))
	assert.ErrorIs(t, verifyChecksum(data, strings.Repeat("0", 64)), ErrChecksum)
}

func TestExtractBinary(t *testing.T) {
	bin := []byte("#!/bin/sh\necho skiquiz")

	got, err := extractBinary(tarGz(t, "skiquiz_1.2.0/skiquiz", bin), "skiquiz_Linux_x86_64.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, bin, got)

	got, err = extractBinary(zipped(t, "skiquiz.exe", bin), "skiquiz_Windows_x86_64.zip")
	require.NoError(t, err)
	assert.Equal(t, bin, got)

	_, err = extractBinary(tarGz(t, "README.md", bin), "skiquiz_Linux_x86_64.tar.gz")
	assert.ErrorContains(t, err, "not found")
}

func TestReplaceBinary_KeepsMode(t *testing.T) {
	target := filepath.Join(t.TempDir(), "skiquiz")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o755))

	require.NoError(t, replaceBinary(target, []byte("new")))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		tag       string
		available bool
	}{
		{"newer release", "v1.0.0", "v1.1.0", true},
		{"same release", "v1.1.0", "v1.1.0", false},
		{"ahead of release", "v2.0.0", "v1.9.9", false},
		{"current without v prefix", "1.0.0", "v1.0.1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != latestPath {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				fmt.Fprintf(w, `{"tag_name":%q,"html_url":"https://example.com/%s"}`, tt.tag, tt.tag)
			}))
			defer srv.Close()

			res, err := NewChecker(WithBaseURL(srv.URL)).Check(context.Background(), &CheckInput{Version: tt.current})
			require.NoError(t, err)
			assert.Equal(t, tt.available, res.UpdateAvailable)
			assert.Equal(t, tt.tag, res.LatestVersion)
		})
	}
}

func TestCheck_DevBuildSkipsNetwork(t *testing.T) {
	c := NewChecker(WithBaseURL("http://127.0.0.1:1"))
	for _, v := range []string{"(devel)", "dev", ""} {
		_, err := c.Check(context.Background(), &CheckInput{Version: v})
		assert.ErrorIs(t, err, ErrDevBuild, v)
	}
}

func TestCheck_BadTag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"nightly"}`))
	}))
	defer srv.Close()

	_, err := NewChecker(WithBaseURL(srv.URL)).Check(context.Background(), &CheckInput{Version: "v1.0.0"})
	assert.ErrorContains(t, err, "not a semantic version")
}

// releaseServer serves one v2.0.0 release containing bin for this platform.
func releaseServer(t *testing.T, bin []byte, checksum func(archive []byte) string) (*httptest.Server, string) {
	t.Helper()
	asset, err := assetNameFor(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		t.Skipf("no release asset for this platform: %v", err)
	}
	archive := tarGz(t, "skiquiz", bin)
	if strings.HasSuffix(asset, ".zip") {
		archive = zipped(t, "skiquiz.exe", bin)
	}
	dl := "/abhisek/skiquiz/releases/download/v2.0.0/"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case latestPath:
			_, _ = w.Write([]byte(`{"tag_name":"v2.0.0"}`))
		case dl + asset:
			_, _ = w.Write(archive)
		case dl + "checksums.txt":
			fmt.Fprintf(w, "%s  %s\n", checksum(archive), asset)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, asset
}

func sha(archive []byte) string {
	s := sha256.Sum256(archive)
	return hex.EncodeToString(s[:])
}

func TestUpdate_HappyPath(t *testing.T) {
	bin := []byte("skiquiz v2")
	srv, _ := releaseServer(t, bin, sha)

	exe := filepath.Join(t.TempDir(), "skiquiz")
	require.NoError(t, os.WriteFile(exe, []byte("skiquiz v1"), 0o755))

	c := NewChecker(WithBaseURL(srv.URL), WithDownloadBaseURL(srv.URL+"/"),
		withExecPath(func() (string, error) { return exe, nil }))

	var stages []string
	err := c.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(p UpdateProgress) {
		stages = append(stages, p.Stage)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"check", "download", "verify", "extract", "apply", "done"}, stages)

	got, err := os.ReadFile(exe)
	require.NoError(t, err)
	assert.Equal(t, bin, got)
}

func TestUpdate_Errors(t *testing.T) {
	t.Run("dev build", func(t *testing.T) {
		err := NewChecker().Update(context.Background(), &UpdateInput{CurrentVersion: "(devel)"}, nil)
		assert.ErrorIs(t, err, ErrDevBuild)
	})

	t.Run("already latest", func(t *testing.T) {
		srv, _ := releaseServer(t, nil, sha)
		err := NewChecker(WithBaseURL(srv.URL)).Update(context.Background(), &UpdateInput{CurrentVersion: "v2.0.0"}, nil)
		assert.ErrorIs(t, err, ErrAlreadyLatest)
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		srv, _ := releaseServer(t, []byte("x"), func([]byte) string { return strings.Repeat("0", 64) })
		c := NewChecker(WithBaseURL(srv.URL), WithDownloadBaseURL(srv.URL),
			withExecPath(func() (string, error) { t.Fatal("must not reach apply"); return "", nil }))
		err := c.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, nil)
		assert.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("missing asset", func(t *testing.T) {
		srv, _ := releaseServer(t, []byte("x"), sha)
		c := NewChecker(WithBaseURL(srv.URL), WithDownloadBaseURL(srv.URL))
		err := c.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0", TargetVersion: "v9.9.9"}, nil)
		assert.ErrorContains(t, err, "download archive")
	})
}

func tarGz(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Size: int64(len(content)), Mode: 0o755, Typeflag: tar.TypeReg}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func zipped(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
