package commands

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/haivivi/speechcommands/cmd/speechcommands/internal/config"
	"github.com/haivivi/speechcommands/internal/wavtest"
)

var shortClip = wavtest.Spec{SampleRate: 8000, Channels: 1, BitDepth: 16, Frames: 800, Freq: 300, Amplitude: 0.3}

// setupTestEnv points the config at a temp file and clears overrides.
func setupTestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvConfig, filepath.Join(dir, "config.yaml"))
	for _, k := range []string{
		config.EnvDataDir, config.EnvSource, config.EnvAddr, config.EnvHistoryDir,
		config.EnvMaxUpload, config.EnvS3Region, config.EnvS3Endpoint,
	} {
		t.Setenv(k, "")
	}
	return dir
}

func runCmd(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	verbose = false
	formatOutput = "table"
	queryExpr = ""
	configPath = ""
	dataDir = ""
	sourceURI = ""

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	wOut.Close()
	wErr.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	var outBuf, errBuf bytes.Buffer
	outBuf.ReadFrom(rOut)
	errBuf.ReadFrom(rErr)

	stdout = outBuf.String()
	stderr = errBuf.String()
	if err != nil {
		exitCode = 1
		stderr += err.Error()
	}

	resetFlags(rootCmd)
	return
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
		f.Value.Set(f.DefValue)
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// makeDataset creates an extracted dataset with one clip per label and a
// reserved background folder.
func makeDataset(t *testing.T, labels ...string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "speech_commands_data")
	clip := wavtest.Bytes(t, shortClip)
	for _, label := range append(labels, "_background_noise_") {
		dir := filepath.Join(root, label)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, label+"_0.wav"), clip, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// writeArchive writes a .tar.gz with the given files and returns its path.
func writeArchive(t *testing.T, files map[string][]byte) string {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(zw)
	for name, body := range files {
		hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write(body); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "speech_commands_v0.02.tar.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
