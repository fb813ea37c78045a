package archive

import (
	"bytes"
	"strings"
	"time"

	"github.com/haierkeys/idea-inbox-service/internal/domain"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const metadataDelimiter = "---"

// metadata 文档头部元数据块
type metadata struct {
	Title   string   `yaml:"title"`
	Tags    []string `yaml:"tags,flow"`
	Created string   `yaml:"created"`
}

// ParsedDocument 从文档正文中解析出的内容
type ParsedDocument struct {
	Title   string
	Tags    []string
	Created time.Time
	Content string
}

// RenderDocument 渲染单个笔记的文档正文
// Layout: "---\n" + YAML metadata + "---\n" + blank line + raw content.
func RenderDocument(n *domain.Note) ([]byte, error) {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	meta, err := yaml.Marshal(metadata{
		Title:   n.TitleOrEmpty(),
		Tags:    tags,
		Created: FormatCreated(n.CreatedAt),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "render metadata for note %d", n.ID)
	}

	var buf bytes.Buffer
	buf.Grow(len(meta) + len(n.Content) + 16)
	buf.WriteString(metadataDelimiter + "\n")
	buf.Write(meta)
	buf.WriteString(metadataDelimiter + "\n\n")
	buf.WriteString(n.Content)
	return buf.Bytes(), nil
}

// FormatCreated 以 UTC RFC 3339（纳秒）格式输出创建时间
func FormatCreated(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseDocument recovers the metadata and the raw content of a rendered document.
// ParseDocument 解析文档正文，还原元数据与原始内容
func ParseDocument(body string) (*ParsedDocument, error) {
	if !strings.HasPrefix(body, metadataDelimiter+"\n") {
		return nil, errors.New("missing metadata block")
	}
	rest := body[len(metadataDelimiter)+1:]

	end := strings.Index(rest, "\n"+metadataDelimiter+"\n")
	if end == -1 {
		return nil, errors.New("unterminated metadata block")
	}
	head := rest[:end+1]
	content := rest[end+len(metadataDelimiter)+2:]
	if !strings.HasPrefix(content, "\n") {
		return nil, errors.New("missing blank line after metadata block")
	}
	content = content[1:]

	var meta metadata
	if err := yaml.Unmarshal([]byte(head), &meta); err != nil {
		return nil, errors.Wrap(err, "parse metadata block")
	}
	created, err := time.Parse(time.RFC3339Nano, meta.Created)
	if err != nil {
		return nil, errors.Wrap(err, "parse created")
	}
	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}

	return &ParsedDocument{
		Title:   meta.Title,
		Tags:    tags,
		Created: created.UTC(),
		Content: content,
	}, nil
}
