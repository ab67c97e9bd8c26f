package cmd

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/templui/fliptrack/internal/imaging"
	"github.com/templui/fliptrack/internal/model"
)

// readImage loads a file as an Image. The declared type comes from the
// extension, like a browser file picker; content sniffing is the fallback.
func readImage(path string) (model.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Image{}, err
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}

	info, err := os.Stat(path)
	createdAt := time.Now()
	if err == nil {
		createdAt = info.ModTime()
	}

	return model.Image{
		Data:       data,
		MimeType:   mimeType,
		CreatedAt:  createdAt,
		SourceName: filepath.Base(path),
	}, nil
}

func outputPath(out, in, name string) string {
	if out != "" {
		return out
	}
	return filepath.Join(filepath.Dir(in), name)
}

func CompressCmd() *cobra.Command {
	var (
		out  string
		opts imaging.Options
	)

	cmd := &cobra.Command{
		Use:   "compress <image>",
		Short: "Resize and re-encode a photo the way uploads are processed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readImage(args[0])
			if err != nil {
				return err
			}

			before, err := imaging.Dimensions(src)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			compressed, err := imaging.Compress(src, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			after, err := imaging.Dimensions(compressed)
			if err != nil {
				return err
			}

			path := outputPath(out, args[0], "compressed_"+compressed.SourceName)
			err = os.WriteFile(path, compressed.Data, 0o644)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d %d bytes -> %s: %dx%d %d bytes\n",
				src.SourceName, before.Width, before.Height, src.Size(),
				path, after.Width, after.Height, compressed.Size())
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: compressed_<name>.jpg next to the input)")
	cmd.Flags().Float64VarP(&opts.Quality, "quality", "q", imaging.DefaultQuality, "JPEG quality between 0 and 1")
	cmd.Flags().IntVar(&opts.MaxWidth, "max-width", imaging.DefaultMaxWidth, "maximum width in pixels")
	cmd.Flags().IntVar(&opts.MaxHeight, "max-height", imaging.DefaultMaxHeight, "maximum height in pixels")
	return cmd
}

func ThumbnailCmd() *cobra.Command {
	var (
		out  string
		size int
	)

	cmd := &cobra.Command{
		Use:   "thumbnail <image>",
		Short: "Write a square thumbnail of a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readImage(args[0])
			if err != nil {
				return err
			}

			thumb, err := imaging.Thumbnail(src, size)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			path := outputPath(out, args[0], thumb.SourceName)
			err = os.WriteFile(path, thumb.Data, 0o644)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: thumb_<name>.jpg next to the input)")
	cmd.Flags().IntVarP(&size, "size", "s", imaging.DefaultThumbnailSize, "edge length in pixels")
	return cmd
}

func ValidateCmd() *cobra.Command {
	var maxSize int64

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check files against the upload rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invalid := 0
			for _, path := range args {
				img, err := readImage(path)
				if err != nil {
					return err
				}

				result := imaging.Validate(img, maxSize)
				if result.Valid {
					fmt.Fprintf(cmd.OutOrStdout(), "ok    %s\n", path)
					continue
				}

				invalid++
				fmt.Fprintf(cmd.OutOrStdout(), "FAIL  %s\n", path)
				for _, msg := range result.Errors {
					fmt.Fprintf(cmd.OutOrStdout(), "      %s\n", msg)
				}
			}

			if invalid > 0 {
				return fmt.Errorf("%d of %d files rejected", invalid, len(args))
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&maxSize, "max-size", 0, "maximum file size in bytes (default: 10MB)")
	return cmd
}
