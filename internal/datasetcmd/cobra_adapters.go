package datasetcmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/artcaptions/internal/images"
	"github.com/spf13/cobra"
)

const defaultReportDir = "reports"

func requireFile(path, what string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%s not found: %s", what, path)
	}
	return nil
}

// NewCaptionsCmd creates the captions command
func NewCaptionsCmd() *cobra.Command {
	var opts captionsOptions

	cmd := &cobra.Command{
		Use:   "captions",
		Short: "Generate a descriptive caption for every matched artwork",
		Long: `Generate a 100-200 word descriptive caption for every artwork whose image_id
appears in the image mapping.

Captions are requested from a text generation endpoint (HuggingFace Inference API by
default) with retries. When the endpoint keeps failing a deterministic fallback caption
is used, so every matched artwork always gets a caption. With --provider none captions
are built from the title and medium alone.

The caption file is checkpointed every --checkpoint-every captions and written once more
at the end of the run.`,
		Example: `  # Caption everything with the HuggingFace Inference API
  artcaptions captions --metadata ./metadata.csv --mapping ./image_mapping.json

  # Dry run on 20 artworks with template captions only
  artcaptions captions --metadata ./metadata.csv --mapping ./image_mapping.json --provider none --max-images 20

  # Continue an interrupted run
  artcaptions captions --metadata ./metadata.parquet --mapping ./image_mapping.json --resume`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFile(opts.metadataPath, "metadata file"); err != nil {
				return err
			}
			if err := requireFile(opts.mappingPath, "image mapping"); err != nil {
				return err
			}
			return executeCaptions(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.metadataPath, "metadata", "metadata.csv", "Path to the artwork metadata (.csv, .jsonl, .json or .parquet)")
	cmd.Flags().StringVar(&opts.mappingPath, "mapping", "image_mapping.json", "Path to the image_id -> image path JSON mapping")
	cmd.Flags().StringVar(&opts.outputPath, "output", "captions.json", "Path to the output captions JSON file")
	cmd.Flags().StringVar(&opts.provider, "provider", "huggingface", "Caption provider ("+strings.Join(ProviderNames, ", ")+")")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model name (defaults to the provider's default)")
	cmd.Flags().IntVar(&opts.maxImages, "max-images", 0, "Caption at most this many artworks (0 for all)")
	cmd.Flags().IntVar(&opts.checkpointEvery, "checkpoint-every", 100, "Save the caption file every N captions (0 to only save at the end)")
	cmd.Flags().DurationVar(&opts.delay, "delay", 500*time.Millisecond, "Minimum delay between remote requests")
	cmd.Flags().BoolVar(&opts.templateFallback, "template-fallback", false, "Use the template caption instead of the fallback sentence when generation fails")
	cmd.Flags().BoolVar(&opts.resume, "resume", false, "Keep captions already in --output and skip those artworks")
	cmd.Flags().StringVar(&opts.reportDir, "report-dir", defaultReportDir, "Directory for the YAML run report (empty to disable)")

	return cmd
}

// NewPreprocessCmd creates the preprocess command
func NewPreprocessCmd() *cobra.Command {
	var opts preprocessOptions

	cmd := &cobra.Command{
		Use:   "preprocess",
		Short: "Letterbox, resize and re-encode images under new identifiers",
		Long: `Resize every image of the mapping to a fixed square resolution, preserving its
aspect ratio with black letterbox padding, and save it as <id>.jpg where id is the
zero-padded position of its image_id in sorted order.

Images that cannot be read are logged and skipped. The old -> new identifier mapping
is written to id_mapping.json next to the output directory.`,
		Example: `  # Preprocess to ./data/images at 128x128
  artcaptions preprocess --mapping ./image_mapping.json --output ./data/images

  # 256x256 with duplicate detection
  artcaptions preprocess --mapping ./image_mapping.json --size 256 --detect-duplicates`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFile(opts.mappingPath, "image mapping"); err != nil {
				return err
			}
			if opts.size <= 0 {
				return fmt.Errorf("--size must be positive, got %d", opts.size)
			}
			return executePreprocess(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.mappingPath, "mapping", "image_mapping.json", "Path to the image_id -> image path JSON mapping")
	cmd.Flags().StringVar(&opts.outputDir, "output", "data/images", "Output directory for the processed images")
	cmd.Flags().StringVar(&opts.idMappingPath, "id-mapping", "", "Path for the old -> new id mapping (defaults to id_mapping.json next to --output)")
	cmd.Flags().IntVar(&opts.size, "size", images.DefaultSize.X, "Width and height of the processed images")
	cmd.Flags().BoolVar(&opts.detectDuplicates, "detect-duplicates", false, "Warn about perceptually identical images")
	cmd.Flags().StringVar(&opts.reportDir, "report-dir", defaultReportDir, "Directory for the YAML run report (empty to disable)")

	return cmd
}

// NewCaptionOneCmd creates the caption-one command for trying the synthesizer on a single artwork
func NewCaptionOneCmd() *cobra.Command {
	var opts captionOneOptions
	r := &opts.record

	cmd := &cobra.Command{
		Use:   "caption-one",
		Short: "Generate a caption for a single artwork given on the command line",
		Example: `  # Template caption
  artcaptions caption-one --title "Portrait of a Woman" --medium "oil on canvas"

  # Ask a local Ollama model and print the prompt
  artcaptions caption-one --title "The Harvesters" --artist "Pieter Bruegel" --provider ollama --show-prompt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeCaptionOne(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&r.ImageID, "id", "0", "Image identifier used in log messages")
	cmd.Flags().StringVar(&r.Title, "title", "", "Artwork title")
	cmd.Flags().StringVar(&r.Artist, "artist", "", "Artist name")
	cmd.Flags().StringVar(&r.Period, "period", "", "Art period or movement")
	cmd.Flags().StringVar(&r.Medium, "medium", "", "Medium, e.g. oil on canvas")
	cmd.Flags().StringVar(&r.Year, "year", "", "Year of creation")
	cmd.Flags().StringVar(&r.Nationality, "nationality", "", "Artist nationality")
	cmd.Flags().StringVar(&r.PictureData, "details", "", "Free-text notes about the artwork")
	cmd.Flags().StringVar(&opts.provider, "provider", ProviderNone, "Caption provider ("+strings.Join(ProviderNames, ", ")+")")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model name (defaults to the provider's default)")
	cmd.Flags().BoolVar(&opts.templateFallback, "template-fallback", false, "Use the template caption instead of the fallback sentence when generation fails")
	cmd.Flags().BoolVar(&opts.showPrompt, "show-prompt", false, "Print the prompt sent to the provider")

	return cmd
}

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Join captions and processed images into a training manifest",
		Long: `Write one row per artwork that has both a caption and a processed image:
image_id, new_id, image_path, caption and word count.

The format follows the output extension: .parquet or .jsonl.`,
		Example: `  artcaptions export --captions captions.json --id-mapping data/id_mapping.json --images data/images --output data/train.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFile(opts.captionsPath, "captions file"); err != nil {
				return err
			}
			if err := requireFile(opts.idMappingPath, "id mapping"); err != nil {
				return err
			}
			return executeExport(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.captionsPath, "captions", "captions.json", "Path to the captions JSON file")
	cmd.Flags().StringVar(&opts.idMappingPath, "id-mapping", "data/id_mapping.json", "Path to the old -> new id mapping written by preprocess")
	cmd.Flags().StringVar(&opts.imagesDir, "images", "data/images", "Directory holding the processed images")
	cmd.Flags().StringVar(&opts.outputPath, "output", "data/train.parquet", "Output manifest (.parquet or .jsonl)")

	return cmd
}
