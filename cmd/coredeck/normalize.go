package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/coredeck/coredeck/internal/codec"
	"github.com/coredeck/coredeck/internal/config"
	"github.com/coredeck/coredeck/internal/icon"
)

// normalizeFlags are shared by normalize and batch.
type normalizeFlags struct {
	size      int
	border    int
	threshold uint8
	filter    string
	format    string
}

func (f *normalizeFlags) register(cmd *cobra.Command) {
	cfg := config.DefaultConfig()
	fl := cmd.Flags()
	fl.IntVar(&f.size, "size", cfg.FinalSize, "output width and height in pixels")
	fl.IntVar(&f.border, "border", cfg.Border, "transparent border in pixels")
	fl.Uint8Var(&f.threshold, "threshold", cfg.AlphaThreshold, "alpha above which a pixel counts as content")
	fl.StringVar(&f.filter, "filter", cfg.Filter, "resampling filter ("+strings.Join(icon.Filters, ", ")+")")
	fl.StringVar(&f.format, "format", "", "output format: png or ico (default from output extension, else png)")
}

func (f *normalizeFlags) normalizer() (*icon.Normalizer, error) {
	cfg := icon.DefaultConfig()
	cfg.FinalSize = f.size
	cfg.Border = f.border
	cfg.AlphaThreshold = f.threshold
	scaler, err := icon.ScalerByName(f.filter)
	if err != nil {
		return nil, err
	}
	return icon.New(cfg, scaler)
}

// outputFormat picks the explicit format, else the one implied by path.
func outputFormat(explicit, path string) (string, error) {
	format := explicit
	if format == "" {
		format = codec.FormatPNG
		if strings.EqualFold(filepath.Ext(path), ".ico") {
			format = codec.FormatICO
		}
	}
	if codec.MediaType(format) == "" {
		return "", fmt.Errorf("%w: output format %q", codec.ErrUnsupported, format)
	}
	return format, nil
}

func newNormalizeCmd() *cobra.Command {
	var flags normalizeFlags
	cmd := &cobra.Command{
		Use:   "normalize <input> <output>",
		Short: "Normalize an image file locally",
		Long: `Crop an image to its visible content, scale it to fit inside a
transparent border and center it on a square canvas.

Use "-" as output to write to stdout. Images with no visible pixels are
copied unchanged.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := flags.normalizer()
			if err != nil {
				return err
			}
			format, err := outputFormat(flags.format, args[1])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			nr, err := normalizeBytes(n, data, format)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if args[1] == "-" {
				_, err = cmd.OutOrStdout().Write(nr.data)
				return err
			}
			if err := os.WriteFile(args[1], nr.data, 0644); err != nil {
				return err
			}
			describe(cmd.ErrOrStderr(), args[1], nr)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// normalized is an encoded normalization result.
type normalized struct {
	data      []byte
	mediaType string
	result    *icon.Result
}

// normalizeBytes decodes, normalizes and encodes data as format. Sources
// without visible content keep their bytes and media type.
func normalizeBytes(n *icon.Normalizer, data []byte, format string) (*normalized, error) {
	img, _, err := codec.Decode(data, n.Config())
	if err != nil {
		return nil, err
	}
	res, err := n.NormalizeResult(img)
	if err != nil {
		return nil, err
	}
	if res.Passthrough {
		return &normalized{data: data, mediaType: codec.Sniff(data), result: res}, nil
	}
	out, mediaType, err := codec.Encode(res.Image, format)
	if err != nil {
		return nil, err
	}
	return &normalized{data: out, mediaType: mediaType, result: res}, nil
}

func describe(w io.Writer, path string, nr *normalized) {
	if nr.result.Passthrough {
		fmt.Fprintf(w, "%s: no visible content, source copied unchanged as %s\n", path, nr.mediaType)
		return
	}
	b := nr.result.Image.Bounds()
	fmt.Fprintf(w, "%s: %dx%d %s, content %s\n", path, b.Dx(), b.Dy(), nr.mediaType, nr.result.Box)
}

func newBatchCmd() *cobra.Command {
	var (
		flags   normalizeFlags
		outDir  string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Normalize every image in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := flags.normalizer()
			if err != nil {
				return err
			}
			format, err := outputFormat(flags.format, "")
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = filepath.Join(args[0], "normalized")
			}
			written, err := batchDir(cmd, n, args[0], outDir, format, workers)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d icons written to %s\n", written, outDir)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default <dir>/normalized)")
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "parallel workers (default one per CPU)")
	return cmd
}

// errSkipped marks a file batch processing reports and moves past.
var errSkipped = errors.New("skipped")

// batchDir normalizes the supported images directly inside dir and writes
// them to outDir. Each worker reads, decodes, normalizes and writes one file
// at a time, so at most workers rasters are in memory. Files that fail to
// decode are reported and skipped; any other failure stops the batch.
func batchDir(cmd *cobra.Command, n *icon.Normalizer, dir, outDir, format string, workers int) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return 0, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		mu      sync.Mutex
		written int
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(workers)

	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, nr, err := batchFile(n, filepath.Join(dir, name), outDir, format)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, errSkipped):
				fmt.Fprintf(cmd.ErrOrStderr(), "skip %s: %v\n", name, err)
				return nil
			case err != nil:
				return fmt.Errorf("%s: %w", name, err)
			case nr == nil:
				return nil
			}
			written++
			describe(cmd.ErrOrStderr(), path, nr)
			return nil
		})
	}
	err = g.Wait()
	return written, err
}

// batchFile normalizes src into outDir and returns the written path. It
// returns a nil result for files that are not images.
func batchFile(n *icon.Normalizer, src, outDir, format string) (string, *normalized, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", nil, err
	}
	if !codec.Supported(codec.Sniff(data)) {
		return "", nil, nil
	}

	img, _, err := codec.Decode(data, n.Config())
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", errSkipped, err)
	}
	res, err := n.NormalizeResult(img)
	if err != nil {
		return "", nil, err
	}

	name := filepath.Base(src)
	nr := &normalized{data: data, mediaType: codec.Sniff(data), result: res}
	if !res.Passthrough {
		nr.data, nr.mediaType, err = codec.Encode(res.Image, format)
		if err != nil {
			return "", nil, err
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + "." + format
	}

	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, nr.data, 0644); err != nil {
		return "", nil, err
	}
	return path, nr, nil
}
