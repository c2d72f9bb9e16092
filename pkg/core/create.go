package core

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/memvault/memvault-go/pkg/embedding"
	"github.com/memvault/memvault-go/pkg/graph"
	"github.com/memvault/memvault-go/pkg/ident"
	"github.com/memvault/memvault-go/pkg/index"
	"github.com/memvault/memvault-go/pkg/memory"
	"github.com/memvault/memvault-go/pkg/record"
)

// CreateRequest asks for a new permanent memory record.
type CreateRequest struct {
	// BasePath is the scope root.
	BasePath string

	// Type is the permanent memory type; the id is derived from it.
	Type memory.Type

	// Title is the record title; the id slug is derived from it.
	Title string

	// Body is the Markdown body.
	Body string

	// Scope is written into the frontmatter.
	Scope memory.Scope

	// Tags, Severity, Links, and Meta populate the optional frontmatter.
	Tags     []string
	Severity string
	Links    []string
	Meta     map[string]interface{}
}

// CreateChanges reports what a create actually touched.
type CreateChanges struct {
	// FileCreated is true once the record file exists.
	FileCreated bool `json:"fileCreated"`

	// GraphUpdated is true when the node was added.
	GraphUpdated bool `json:"graphUpdated"`

	// IndexUpdated is true when the index entry was added.
	IndexUpdated bool `json:"indexUpdated"`

	// EmbeddingCached is true when a vector was computed and cached.
	EmbeddingCached bool `json:"embeddingCached"`
}

// CreateResult is the create response.
type CreateResult struct {
	Status  Status        `json:"status"`
	Error   string        `json:"error,omitempty"`
	ID      string        `json:"id,omitempty"`
	Changes CreateChanges `json:"changes"`
}

// CreateMemory writes a new permanent record and seeds its graph node and
// index entry. When an embedding provider is configured, the content vector
// is computed and cached opportunistically; embedding failure never fails
// the create.
func (c *Client) CreateMemory(ctx context.Context, req *CreateRequest) (*CreateResult, error) {
	res := &CreateResult{Status: StatusError}

	if err := ctx.Err(); err != nil {
		return nil, NewMemoryError("CreateMemory", err)
	}
	if !req.Type.IsPermanent() {
		res.Error = "a permanent memory type is required"
		return res, nil
	}
	id := ident.NewMemoryID(req.Type, req.Title)
	if id == string(req.Type)+"-" || ident.Slugify(req.Title) == "" {
		res.Error = "a title that slugifies to a non-empty id is required"
		return res, nil
	}
	res.ID = id

	if _, _, taken := locateMemoryFile(req.BasePath, id); taken {
		res.Error = conflictError(id)
		return res, nil
	}

	now := record.FormatTimestamp(time.Now())
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	rec := &record.Record{
		Frontmatter: record.Frontmatter{
			Type:     req.Type,
			Title:    req.Title,
			Created:  now,
			Updated:  now,
			Tags:     tags,
			Scope:    req.Scope,
			Severity: req.Severity,
			Links:    req.Links,
			Meta:     req.Meta,
		},
		Body: req.Body,
	}

	path := filepath.Join(req.BasePath, memory.PermanentDir, memoryFileName(id))
	if err := writeRecord(path, rec); err != nil {
		return nil, NewMemoryError("CreateMemory", err)
	}
	res.Changes.FileCreated = true

	c.seedStores(req.BasePath, id, memory.PermanentDir, rec, &res.Changes)
	res.Changes.EmbeddingCached = c.cacheEmbedding(ctx, req.BasePath, id, rec)

	res.Status = StatusSuccess
	return res, nil
}

// ThinkingRequest asks for a new ephemeral thinking document.
type ThinkingRequest struct {
	// BasePath is the scope root.
	BasePath string

	// Title is the document title.
	Title string

	// Body is the Markdown body.
	Body string

	// Scope is written into the frontmatter and the think state.
	Scope memory.Scope

	// Tags populate the frontmatter tag set.
	Tags []string
}

// ThinkingResult is the thinking-document response.
type ThinkingResult struct {
	Status  Status        `json:"status"`
	Error   string        `json:"error,omitempty"`
	ID      string        `json:"id,omitempty"`
	Changes CreateChanges `json:"changes"`

	// ThinkStateUpdated is true when the document became the active one.
	ThinkStateUpdated bool `json:"thinkStateUpdated"`
}

// CreateThinkingDocument writes a new thought record under temporary/ and
// marks it as the scope root's active thinking document.
func (c *Client) CreateThinkingDocument(ctx context.Context, req *ThinkingRequest) (*ThinkingResult, error) {
	res := &ThinkingResult{Status: StatusError}

	if err := ctx.Err(); err != nil {
		return nil, NewMemoryError("CreateThinkingDocument", err)
	}

	id := ident.NewThinkingID(time.Now())
	res.ID = id

	now := record.FormatTimestamp(time.Now())
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	rec := &record.Record{
		Frontmatter: record.Frontmatter{
			Type:    memory.TypeThought,
			Title:   req.Title,
			Created: now,
			Updated: now,
			Tags:    tags,
			Scope:   req.Scope,
		},
		Body: req.Body,
	}

	path := filepath.Join(req.BasePath, memory.TemporaryDir, memoryFileName(id))
	if err := writeRecord(path, rec); err != nil {
		return nil, NewMemoryError("CreateThinkingDocument", err)
	}
	res.Changes.FileCreated = true

	c.seedStores(req.BasePath, id, memory.TemporaryDir, rec, &res.Changes)

	st := &ThinkState{CurrentDocumentID: id, CurrentScope: string(req.Scope)}
	if err := SaveThinkState(req.BasePath, st); err != nil {
		c.logger.Warn("thinking: state save failed", zap.String("id", id), zap.Error(err))
	} else {
		res.ThinkStateUpdated = true
	}

	res.Status = StatusSuccess
	return res, nil
}

// seedStores adds the graph node and index entry for a freshly written
// record, best-effort per store.
func (c *Client) seedStores(basePath, id, subdir string, rec *record.Record, changes *CreateChanges) {
	if g, err := graph.Load(basePath); err != nil {
		c.logger.Warn("create: graph load failed", zap.String("id", id), zap.Error(err))
	} else {
		g.AddNode(graph.Node{ID: id, Type: string(rec.Frontmatter.Type), Title: rec.Frontmatter.Title})
		for _, target := range rec.Frontmatter.Links {
			g.AddEdge(graph.Edge{Source: id, Target: target, Label: "links"})
		}
		if err := graph.Save(basePath, g); err != nil {
			c.logger.Warn("create: graph save failed", zap.String("id", id), zap.Error(err))
		} else {
			changes.GraphUpdated = true
		}
	}

	if idx, err := index.Load(basePath); err != nil {
		c.logger.Warn("create: index load failed", zap.String("id", id), zap.Error(err))
	} else {
		idx.Add(indexEntryFor(id, subdir, rec))
		if err := index.Save(basePath, idx); err != nil {
			c.logger.Warn("create: index save failed", zap.String("id", id), zap.Error(err))
		} else {
			changes.IndexUpdated = true
		}
	}
}

// cacheEmbedding computes and caches the record's vector when a provider is
// configured. Always best-effort.
func (c *Client) cacheEmbedding(ctx context.Context, basePath, id string, rec *record.Record) bool {
	if c.embedder == nil {
		return false
	}
	content := embeddableContent(rec)
	vector, err := c.embedder.Embed(ctx, content)
	if err != nil {
		c.logger.Warn("embedding failed", zap.String("id", id), zap.Error(err))
		return false
	}

	cache, _ := embedding.Load(basePath)
	cache.Set(id, embedding.NewEntry(vector, content))
	if err := embedding.Save(basePath, cache); err != nil {
		c.logger.Warn("embedding cache save failed", zap.String("id", id), zap.Error(err))
		return false
	}
	return true
}

// embeddableContent is the text a record's vector is computed from.
func embeddableContent(rec *record.Record) string {
	if rec.Frontmatter.Title == "" {
		return rec.Body
	}
	return rec.Frontmatter.Title + "\n\n" + rec.Body
}
