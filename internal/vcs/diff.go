package vcs

import (
	"bytes"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/diff"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/maadhav-codes/diff2commit/internal/models"
)

// stagedFiles returns the paths whose index entry differs from HEAD.
func (r *Repository) stagedFiles() (git.Status, []string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, nil, errors.Wrap(err, "open worktree")
	}

	status, err := wt.Status()
	if err != nil {
		return nil, nil, errors.Wrap(err, "read status")
	}

	var paths []string
	for path, st := range status {
		if st.Staging == git.Unmodified || st.Staging == git.Untracked {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return status, paths, nil
}

// HasStagedChanges reports whether anything is staged.
func (r *Repository) HasStagedChanges() (bool, error) {
	_, paths, err := r.stagedFiles()
	if err != nil {
		return false, err
	}
	return len(paths) > 0, nil
}

// StagedDiff compares the index against HEAD and renders a unified diff.
// Nothing in the repository is modified.
func (r *Repository) StagedDiff() (*models.DiffSummary, error) {
	status, paths, err := r.stagedFiles()
	if err != nil {
		return nil, err
	}

	summary := &models.DiffSummary{
		Files:       paths,
		ChangeTypes: make(map[string]models.ChangeType, len(paths)),
	}
	if len(paths) == 0 {
		return summary, nil
	}

	idx, err := r.repo.Storer.Index()
	if err != nil {
		return nil, errors.Wrap(err, "read index")
	}
	tree, err := r.headTree()
	if err != nil {
		return nil, err
	}

	patches := make([]fdiff.FilePatch, 0, len(paths))
	for _, path := range paths {
		st := status[path]
		summary.ChangeTypes[path] = changeType(st.Staging)

		fp, err := r.filePatch(idx, tree, path, st)
		if err != nil {
			return nil, errors.Wrapf(err, "diff %s", path)
		}
		summary.Additions += fp.count(fdiff.Add)
		summary.Deletions += fp.count(fdiff.Delete)
		patches = append(patches, fp)
	}

	var buf bytes.Buffer
	if err := fdiff.NewUnifiedEncoder(&buf, fdiff.DefaultContextLines).Encode(stagedPatch(patches)); err != nil {
		return nil, errors.Wrap(err, "encode diff")
	}
	summary.Text = buf.String()
	return summary, nil
}

func (r *Repository) filePatch(idx *index.Index, tree *object.Tree, path string, st *git.FileStatus) (*filePatch, error) {
	fromPath := path
	if (st.Staging == git.Renamed || st.Staging == git.Copied) && st.Extra != "" {
		fromPath = st.Extra
	}

	var from, to *object.File
	if tree != nil && st.Staging != git.Added {
		f, err := tree.File(fromPath)
		if err != nil && !errors.Is(err, object.ErrFileNotFound) {
			return nil, err
		}
		from = f
	}
	if st.Staging != git.Deleted {
		entry, err := idx.Entry(path)
		if err != nil && !errors.Is(err, index.ErrEntryNotFound) {
			return nil, err
		}
		if entry != nil {
			blob, err := r.repo.BlobObject(entry.Hash)
			if err != nil {
				return nil, err
			}
			to = object.NewFile(path, entry.Mode, blob)
		}
	}

	fp := &filePatch{}
	if from != nil {
		fp.from = &file{hash: from.Hash, mode: from.Mode, path: from.Name}
	}
	if to != nil {
		fp.to = &file{hash: to.Hash, mode: to.Mode, path: to.Name}
	}

	binary, err := isBinary(from, to)
	if err != nil {
		return nil, err
	}
	if binary {
		fp.binary = true
		return fp, nil
	}

	fromContent, err := contents(from)
	if err != nil {
		return nil, err
	}
	toContent, err := contents(to)
	if err != nil {
		return nil, err
	}

	for _, d := range diff.Do(fromContent, toContent) {
		if d.Text == "" {
			continue
		}
		fp.chunks = append(fp.chunks, &chunk{content: d.Text, op: operation(d.Type)})
	}
	return fp, nil
}

func isBinary(files ...*object.File) (bool, error) {
	for _, f := range files {
		if f == nil {
			continue
		}
		bin, err := f.IsBinary()
		if err != nil {
			return false, err
		}
		if bin {
			return true, nil
		}
	}
	return false, nil
}

func contents(f *object.File) (string, error) {
	if f == nil {
		return "", nil
	}
	return f.Contents()
}

func operation(t diffmatchpatch.Operation) fdiff.Operation {
	switch t {
	case diffmatchpatch.DiffInsert:
		return fdiff.Add
	case diffmatchpatch.DiffDelete:
		return fdiff.Delete
	default:
		return fdiff.Equal
	}
}

func changeType(code git.StatusCode) models.ChangeType {
	switch code {
	case git.Added:
		return models.ChangeAdded
	case git.Deleted:
		return models.ChangeDeleted
	case git.Renamed:
		return models.ChangeRenamed
	case git.Copied:
		return models.ChangeCopied
	default:
		return models.ChangeModified
	}
}

// stagedPatch implements fdiff.Patch over the staged file patches.
type stagedPatch []fdiff.FilePatch

func (p stagedPatch) FilePatches() []fdiff.FilePatch { return p }
func (p stagedPatch) Message() string                { return "" }

type filePatch struct {
	from, to *file
	binary   bool
	chunks   []fdiff.Chunk
}

func (p *filePatch) IsBinary() bool        { return p.binary }
func (p *filePatch) Chunks() []fdiff.Chunk { return p.chunks }

// Files returns untyped nils for a missing side; the encoder checks
// against nil to detect created and deleted files.
func (p *filePatch) Files() (fdiff.File, fdiff.File) {
	var from, to fdiff.File
	if p.from != nil {
		from = p.from
	}
	if p.to != nil {
		to = p.to
	}
	return from, to
}

// count returns the number of lines carried by chunks of type op.
func (p *filePatch) count(op fdiff.Operation) int {
	n := 0
	for _, c := range p.chunks {
		if c.Type() != op {
			continue
		}
		text := c.Content()
		n += strings.Count(text, "\n")
		if !strings.HasSuffix(text, "\n") {
			n++
		}
	}
	return n
}

type file struct {
	hash plumbing.Hash
	mode filemode.FileMode
	path string
}

func (f *file) Hash() plumbing.Hash     { return f.hash }
func (f *file) Mode() filemode.FileMode { return f.mode }
func (f *file) Path() string            { return f.path }

type chunk struct {
	content string
	op      fdiff.Operation
}

func (c *chunk) Content() string       { return c.content }
func (c *chunk) Type() fdiff.Operation { return c.op }
