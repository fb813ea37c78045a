package archive

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	// DocumentExt 文档扩展名
	DocumentExt = ".md"
	// maxBaseBytes 文件名主体最大字节数，为 "-<id>-<n>.md" 后缀留出空间，整体不超过 255 字节
	maxBaseBytes = 200
)

// 各平台文件系统中的非法字符
var invalidFilenameChars = "/\\:*?\"<>|"

// Windows 保留设备名
var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// SanitizeTitle turns a note title into a safe filename stem.
// An empty result means the title has nothing usable.
// SanitizeTitle 将标题转换为安全的文件名主体，返回空字符串表示不可用
func SanitizeTitle(title string) string {
	title = norm.NFC.String(strings.TrimSpace(title))

	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case r == utf8.RuneError:
			b.WriteRune('-')
		case unicode.IsControl(r), strings.ContainsRune(invalidFilenameChars, r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}

	s := strings.Trim(b.String(), ". ")
	if len(s) > maxBaseBytes {
		s = strings.TrimRight(truncateBytes(s, maxBaseBytes), ". ")
	}
	if _, ok := reservedNames[strings.ToUpper(s)]; ok {
		s += "_"
	}
	return s
}

// truncateBytes cuts s to at most limit bytes without splitting a rune.
func truncateBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := 0
	for i, r := range s {
		if i+utf8.RuneLen(r) > limit {
			break
		}
		cut = i + utf8.RuneLen(r)
	}
	return s[:cut]
}

// baseName 返回笔记的文件名主体，标题不可用时退回 note-<id>
func baseName(id int64, title *string) string {
	if title != nil {
		if s := SanitizeTitle(*title); s != "" {
			return s
		}
	}
	return fmt.Sprintf("note-%d", id)
}

// nameAllocator 为文档分配唯一文件名
// Not safe for concurrent use.
type nameAllocator struct {
	used   map[string]struct{}
	folder cases.Caser
}

func newNameAllocator() *nameAllocator {
	return &nameAllocator{
		used:   make(map[string]struct{}),
		folder: cases.Fold(),
	}
}

// key 文件名比较键，大小写不敏感
func (a *nameAllocator) key(name string) string {
	return a.folder.String(norm.NFC.String(name))
}

// allocate returns "<base>.md" when free, then "<base>-<id>.md",
// then "<base>-<id>-<n>.md" for n = 2, 3, ...
func (a *nameAllocator) allocate(id int64, base string) string {
	name := base + DocumentExt
	if a.taken(name) {
		name = fmt.Sprintf("%s-%d%s", base, id, DocumentExt)
		for n := 2; a.taken(name); n++ {
			name = fmt.Sprintf("%s-%d-%d%s", base, id, n, DocumentExt)
		}
	}
	a.used[a.key(name)] = struct{}{}
	return name
}

func (a *nameAllocator) taken(name string) bool {
	_, ok := a.used[a.key(name)]
	return ok
}

const (
	exportPrefix     = "idea-inbox-export-"
	exportSuffix     = ".zip"
	exportDateLayout = "2006-01-02"
)

// ExportFilename 返回导出归档文件名，日期取 UTC
func ExportFilename(t time.Time) string {
	return exportPrefix + t.UTC().Format(exportDateLayout) + exportSuffix
}

// IsExportFilename reports whether name was produced by ExportFilename.
func IsExportFilename(name string) bool {
	if !strings.HasPrefix(name, exportPrefix) || !strings.HasSuffix(name, exportSuffix) {
		return false
	}
	_, err := time.Parse(exportDateLayout, strings.TrimSuffix(strings.TrimPrefix(name, exportPrefix), exportSuffix))
	return err == nil
}
