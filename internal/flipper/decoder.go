package flipper

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"irdbclean/internal/irfile"
)

// FileRef locates one raw IR file relative to the database root.
type FileRef struct {
	RelDir string
	Name   string
}

// Decoder walks a local IR database for raw-type files and drives the device
// to decode each one into the parsed directory tree.
type Decoder struct {
	client         *Client
	systemDir      string
	flipperDir     string
	parsedDir      string
	closeAppsEvery int
	verifyTimeout  time.Duration

	Processed int
	Failed    []string
}

func NewDecoder(client *Client, systemDir, flipperDir, parsedDir string, closeAppsEvery int, verifyTimeout time.Duration) *Decoder {
	if closeAppsEvery <= 0 {
		closeAppsEvery = 50
	}
	if verifyTimeout <= 0 {
		verifyTimeout = 500 * time.Millisecond
	}
	return &Decoder{
		client:         client,
		systemDir:      systemDir,
		flipperDir:     flipperDir,
		parsedDir:      parsedDir,
		closeAppsEvery: closeAppsEvery,
		verifyTimeout:  verifyTimeout,
	}
}

// GatherRawFiles walks the local tree and keeps .ir files declaring raw
// signals; only those need device-side decoding.
func (d *Decoder) GatherRawFiles() ([]FileRef, error) {
	var refs []FileRef
	err := filepath.WalkDir(d.systemDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".ir") {
			return nil
		}
		raw, err := IsRawType(path)
		if err != nil || !raw {
			return nil
		}
		relDir, err := filepath.Rel(d.systemDir, filepath.Dir(path))
		if err != nil {
			return err
		}
		refs = append(refs, FileRef{RelDir: filepath.ToSlash(relDir), Name: entry.Name()})
		return nil
	})
	return refs, err
}

// Raw-type declarations seen in the wild, checked against lowercased content
// with all whitespace removed.
var rawIndicators = []string{`type:raw`, `type="raw"`, `type='raw'`}

// IsRawType reports whether a signal file declares at least one raw signal.
func IsRawType(path string) (bool, error) {
	lines, err := irfile.ReadLines(path)
	if err != nil {
		return false, err
	}
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(strings.ToLower(line))
	}
	content := strings.Join(strings.Fields(b.String()), "")
	for _, indicator := range rawIndicators {
		if strings.Contains(content, indicator) {
			return true, nil
		}
	}
	return false, nil
}

// DecodeFile asks the device to decode one file and verifies the output
// appeared.
func (d *Decoder) DecodeFile(ref FileRef) error {
	input := devicePath(d.flipperDir, ref)
	output := devicePath(d.parsedDir, ref)

	outputDir := output[:strings.LastIndex(output, "/")]
	if err := d.client.CreateDirectory(outputDir); err != nil {
		return err
	}

	if _, err := d.client.SendCommandWithRetry(fmt.Sprintf("ir decode %s %s", input, output), time.Second); err != nil {
		return err
	}

	if !d.client.FileExists(output, d.verifyTimeout) {
		return fmt.Errorf("decoded file %s not found after decoding", output)
	}
	return nil
}

// Run decodes every gathered file, closing device apps periodically so the
// IR subsystem stays free.
func (d *Decoder) Run(ctx context.Context) error {
	refs, err := d.GatherRawFiles()
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		fmt.Println("no raw IR files to process")
		return nil
	}

	fmt.Printf("%d files to process\n", len(refs))
	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i%d.closeAppsEvery == 0 {
			d.client.CloseRunningApps()
		}
		if err := d.DecodeFile(ref); err != nil {
			fmt.Printf("decode failed %s/%s: %v\n", ref.RelDir, ref.Name, err)
			d.Failed = append(d.Failed, ref.RelDir+"/"+ref.Name)
			continue
		}
		d.Processed++
	}

	fmt.Printf("finished: %d of %d files processed\n", d.Processed, len(refs))
	return nil
}

func devicePath(root string, ref FileRef) string {
	parts := []string{strings.TrimSuffix(root, "/")}
	if ref.RelDir != "" && ref.RelDir != "." {
		parts = append(parts, ref.RelDir)
	}
	parts = append(parts, ref.Name)
	return strings.Join(parts, "/")
}
