package batch

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sagan/naimeta/features/imagemeta"
)

// commentPNG returns a 1x1 PNG carrying comment in a tEXt chunk.
func commentPNG(t *testing.T, comment string) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	data := buf.Bytes()
	payload := []byte("Comment\x00" + comment)
	var chunk bytes.Buffer
	binary.Write(&chunk, binary.BigEndian, uint32(len(payload)))
	chunk.WriteString("tEXt")
	chunk.Write(payload)
	binary.Write(&chunk, binary.BigEndian, crc32.ChecksumIEEE(append([]byte("tEXt"), payload...)))
	const ihdrEnd = 33
	out := append([]byte(nil), data[:ihdrEnd]...)
	out = append(out, chunk.Bytes()...)
	return append(out, data[ihdrEnd:]...)
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	jpeg := filepath.Join(dir, "photo.png")
	missing := filepath.Join(dir, "missing.png")
	other := filepath.Join(dir, "other.png")
	writeFile(t, good, commentPNG(t, `{"prompt":"a, b","seed":1}`))
	writeFile(t, jpeg, []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0, 0, 0, 0, 0})
	writeFile(t, other, commentPNG(t, `{"prompt":"c","seed":2}`))

	var doneCount int
	report := Run(context.Background(), []string{good, jpeg, missing, other}, Options{
		Workers: 2,
		OnDone:  func(*Item) { doneCount++ },
	})
	if doneCount != 4 {
		t.Errorf("OnDone called %d times, want 4", doneCount)
	}
	if len(report.Items) != 4 {
		t.Fatalf("got %d items, want 4", len(report.Items))
	}
	for i, want := range []string{good, jpeg, missing, other} {
		if report.Items[i].Path != want {
			t.Errorf("item %d path = %q, want %q", i, report.Items[i].Path, want)
		}
	}
	if rec := report.Items[0].Record; rec == nil || rec.Prompt != "a, b" || rec.FileName != "good.png" {
		t.Errorf("item 0 record = %+v", rec)
	}
	if !errors.Is(report.Items[1].Err, imagemeta.ErrUnsupportedFormat) {
		t.Errorf("item 1 error = %v, want ErrUnsupportedFormat", report.Items[1].Err)
	}
	if !errors.Is(report.Items[2].Err, os.ErrNotExist) {
		t.Errorf("item 2 error = %v, want not exist", report.Items[2].Err)
	}
	if rec := report.Items[3].Record; rec == nil || rec.Seed != 2 {
		t.Errorf("item 3 record = %+v", rec)
	}
	if failed := report.Failed(); len(failed) != 2 {
		t.Errorf("Failed() = %d items, want 2", len(failed))
	}
	if records := report.Records(); len(records) != 2 {
		t.Errorf("Records() = %d, want 2", len(records))
	}
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writeFile(t, path, commentPNG(t, `{"prompt":"x"}`))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := Run(ctx, []string{path, path}, Options{})
	for i, item := range report.Items {
		if !errors.Is(item.Err, context.Canceled) {
			t.Errorf("item %d error = %v, want context.Canceled", i, item.Err)
		}
	}
}

func TestRunHook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writeFile(t, path, commentPNG(t, `{"prompt":"x"}`))
	hookErr := errors.New("hook failed")
	report := Run(context.Background(), []string{path}, Options{
		Hook: func(item *Item, data []byte) error {
			if len(data) == 0 || item.Record == nil {
				t.Errorf("hook called without data or record")
			}
			return hookErr
		},
	})
	if item := report.Items[0]; !errors.Is(item.Err, hookErr) || item.Record != nil {
		t.Errorf("item = %+v, want hook error and no record", item)
	}
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"a.png", "B.WEBP", "c.txt", ".hidden.png", "x.png.part", "Thumbs.db",
		"sub/d.png", "sub/e.webp", ".git/f.png", "2024-01/g.png",
	} {
		writeFile(t, filepath.Join(dir, filepath.FromSlash(name)), []byte("x"))
	}
	rel := func(files []string) (names []string) {
		for _, f := range files {
			r, _ := filepath.Rel(dir, f)
			names = append(names, filepath.ToSlash(r))
		}
		return names
	}

	tests := []struct {
		name string
		opts CollectOptions
		want []string
	}{
		{"recursive", CollectOptions{}, []string{"2024-01/g.png", "B.WEBP", "a.png", "sub/d.png", "sub/e.webp"}},
		{"top level", CollectOptions{NoRecursive: true}, []string{"B.WEBP", "a.png"}},
		{"include base name", CollectOptions{Include: []string{"*.webp"}}, []string{"sub/e.webp"}},
		{"include path", CollectOptions{Include: []string{"2024-*/*"}}, []string{"2024-01/g.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := Collect(dir, tt.opts)
			if err != nil {
				t.Fatalf("Collect failed: %v", err)
			}
			if got := rel(files); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollectSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, path, []byte("x"))
	files, err := Collect(path, CollectOptions{})
	if err != nil || !reflect.DeepEqual(files, []string{path}) {
		t.Errorf("Collect(file) = %v, %v", files, err)
	}
}

func TestCollectBadPattern(t *testing.T) {
	if _, err := Collect(t.TempDir(), CollectOptions{Include: []string{"[a"}}); err == nil {
		t.Errorf("expected an error for an invalid pattern")
	}
}

func TestCollectAllMissingRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writeFile(t, path, []byte("x"))
	missing := filepath.Join(dir, "missing")
	files, failed, err := CollectAll([]string{missing, dir, path}, CollectOptions{})
	if err != nil {
		t.Fatalf("CollectAll failed: %v", err)
	}
	if !reflect.DeepEqual(files, []string{path}) {
		t.Errorf("files = %v, want %v", files, []string{path})
	}
	if len(failed) != 1 || failed[0].Path != missing || failed[0].Err == nil {
		t.Errorf("failed = %+v, want one item for %s", failed, missing)
	}
	if _, _, err := CollectAll([]string{dir}, CollectOptions{Include: []string{"[a"}}); err == nil {
		t.Errorf("expected an error for an invalid pattern")
	}
}

func TestCollectSniff(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "novelai_export"), commentPNG(t, `{"prompt":"x"}`))
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("plain text"))
	writeFile(t, filepath.Join(dir, "a.png"), []byte("x"))
	files, err := Collect(dir, CollectOptions{Sniff: true})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	expected := []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "novelai_export")}
	if !reflect.DeepEqual(files, expected) {
		t.Errorf("Collect(sniff) = %v, expected %v", files, expected)
	}
}
