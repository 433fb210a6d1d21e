package pbo

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tyen-customs-a3/pbo-tools/internal/config"
	"github.com/tyen-customs-a3/pbo-tools/internal/filter"
	"github.com/tyen-customs-a3/pbo-tools/internal/model"
)

// commitConcurrency bounds the parallel staging copies.
const commitConcurrency = 4

// commitWorkspace moves the filtered extraction results from a
// workspace into the output directory. Files are first copied into a
// staging directory inside the output directory, then renamed into
// place; any failure before the rename pass leaves the output
// directory untouched. The returned paths are the committed files
// relative to the output directory, sorted and slash-separated.
func commitWorkspace(ctx context.Context, workDir, outputDir string, fl *filter.Filter, cfg config.Config, logger *slog.Logger) ([]string, error) {
	collected, err := collectWorkspaceFiles(workDir)
	if err != nil {
		return nil, &model.FileSystemError{
			Op:   model.FSOpCommit,
			Path: workDir,
			Err:  err,
		}
	}

	type move struct {
		src string
		dst string
	}

	var moves []move
	for _, rel := range collected {
		if !fl.Match(rel) {
			continue
		}
		dst := rel
		if cfg.NormalizeBins {
			dst = normalizeBinName(rel, cfg.BinMappings)
		}
		moves = append(moves, move{src: rel, dst: dst})
	}

	if len(moves) == 0 {
		logger.Debug("nothing to commit", "workspace", workDir)
		return []string{}, nil
	}

	sort.Slice(moves, func(i, j int) bool { return moves[i].dst < moves[j].dst })

	// Staging lives inside the output directory so the final renames
	// never cross a filesystem boundary.
	staging := filepath.Join(outputDir, ".staging-"+uuid.NewString())
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return nil, &model.FileSystemError{
			Op:   model.FSOpCommit,
			Path: staging,
			Err:  err,
		}
	}
	defer os.RemoveAll(staging)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(commitConcurrency)
	for _, mv := range moves {
		mv := mv
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src := filepath.Join(workDir, filepath.FromSlash(mv.src))
			dst := filepath.Join(staging, filepath.FromSlash(mv.dst))
			return copyFile(src, dst)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &model.FileSystemError{
			Op:   model.FSOpCommit,
			Path: outputDir,
			Err:  err,
		}
	}

	files := make([]string, 0, len(moves))
	for _, mv := range moves {
		src := filepath.Join(staging, filepath.FromSlash(mv.dst))
		dst := filepath.Join(outputDir, filepath.FromSlash(mv.dst))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return nil, &model.FileSystemError{
				Op:   model.FSOpCommit,
				Path: dst,
				Err:  err,
			}
		}
		if err := os.Rename(src, dst); err != nil {
			return nil, &model.FileSystemError{
				Op:   model.FSOpCommit,
				Path: dst,
				Err:  err,
			}
		}
		files = append(files, mv.dst)
	}

	logger.Debug("committed extraction output",
		"files", len(files),
		"output_dir", outputDir)

	return files, nil
}

// collectWorkspaceFiles walks the workspace and returns the relative
// slash-separated paths of its regular files. Every path is validated
// before use so a hostile archive cannot plant traversal segments or
// reserved names into the commit.
func collectWorkspaceFiles(workDir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(workDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return fmt.Errorf("workspace holds non-regular file %s", p)
		}

		rel, err := filepath.Rel(workDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if err := model.ValidateEntryPath(rel); err != nil {
			return fmt.Errorf("refusing to commit %q: %w", rel, err)
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// copyFile copies src to dst, creating parent directories and syncing
// the content to disk before reporting success. The destination must
// not already exist.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
