package media

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxBytes is the largest upload accepted unless configured otherwise.
const DefaultMaxBytes int64 = 10 << 20

// DefaultAllowedTypes lists the MIME types accepted by default.
func DefaultAllowedTypes() []string {
	return []string{"image/jpeg", "image/png", "image/webp", "image/gif", "video/mp4"}
}

// UploadFile is a file handed to Upload. Size may be -1 when the caller does
// not know it; ContentType may be empty, in which case it is sniffed.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
	Tags        []string
}

// Limits bounds what Upload accepts.
type Limits struct {
	MaxBytes     int64
	AllowedTypes []string
}

func DefaultLimits() Limits {
	return Limits{MaxBytes: DefaultMaxBytes, AllowedTypes: DefaultAllowedTypes()}
}

// Check validates f and fills in ContentType and Size when they were not
// supplied. It reads from f.Body only to sniff or measure and replaces it
// with a reader that yields the full content. The replacement body fails
// with ErrFileTooLarge once it has produced more than the size limit, so a
// wrong Size cannot push a larger file past the check.
func (l Limits) Check(f *UploadFile) error {
	if f == nil || f.Body == nil {
		return &ValidationError{Field: "file", Reason: fmt.Errorf("no content")}
	}
	if strings.TrimSpace(f.Name) == "" {
		return &ValidationError{Field: "name", Reason: fmt.Errorf("file name is required")}
	}
	max := l.MaxBytes
	if max <= 0 {
		max = DefaultMaxBytes
	}

	if f.Size < 0 {
		data, err := io.ReadAll(io.LimitReader(f.Body, max+1))
		if err != nil {
			return &ValidationError{Field: "file", Reason: err}
		}
		f.Size = int64(len(data))
		f.Body = bytes.NewReader(data)
	}
	if f.Size > max {
		return &ValidationError{Field: "size", Reason: fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, f.Size, max)}
	}

	if strings.TrimSpace(f.ContentType) == "" {
		sniffed, body, err := sniff(f.Body)
		if err != nil {
			return &ValidationError{Field: "file", Reason: err}
		}
		f.ContentType = sniffed
		f.Body = body
	}
	contentType := baseType(f.ContentType)
	allowed := l.AllowedTypes
	if len(allowed) == 0 {
		allowed = DefaultAllowedTypes()
	}
	if !slices.Contains(allowed, contentType) {
		return &ValidationError{Field: "type", Reason: fmt.Errorf("%w: %s", ErrTypeNotAllowed, contentType)}
	}
	f.ContentType = contentType
	f.Body = &boundedBody{r: f.Body, remaining: max, max: max}
	return nil
}

type boundedBody struct {
	r         io.Reader
	remaining int64
	max       int64
}

func (b *boundedBody) Read(p []byte) (int, error) {
	if b.remaining < 0 {
		return 0, b.tooLarge()
	}
	if int64(len(p)) > b.remaining+1 {
		p = p[:b.remaining+1]
	}
	n, err := b.r.Read(p)
	b.remaining -= int64(n)
	if b.remaining < 0 {
		return n - 1, b.tooLarge()
	}
	return n, err
}

func (b *boundedBody) tooLarge() error {
	return &ValidationError{Field: "size", Reason: fmt.Errorf("%w: body exceeds %d bytes", ErrFileTooLarge, b.max)}
}

// sniff detects the MIME type from the head of r and returns a reader that
// still yields every byte.
func sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, 3072)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", nil, err
	}
	head = head[:n]
	detected := mimetype.Detect(head)
	return detected.String(), io.MultiReader(bytes.NewReader(head), r), nil
}

func baseType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9.]`)

// StorageKey builds the bucket key for an upload: the upload time in unix
// milliseconds and the file name with every character outside [A-Za-z0-9.]
// replaced by an underscore.
func StorageKey(name string, now time.Time) string {
	return fmt.Sprintf("%d_%s", now.UnixMilli(), unsafeKeyChars.ReplaceAllString(name, "_"))
}
