package unpacker

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/beam-cloud/unpacker/pkg/archive"
	"github.com/beam-cloud/unpacker/pkg/common"
)

// SetLogLevel configures the logging verbosity for the unpacker library.
// Valid levels: "debug", "info", "warn", "error", "disabled"
// Use "debug" to see per-entry logs (files archived, skipped, extracted)
// Use "info" for operation-level logs (default)
// Use "disabled" to suppress all logs
func SetLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "disabled", "none", "off":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	default:
		return fmt.Errorf("invalid log level %q: must be one of: debug, info, warn, error, disabled", level)
	}
	return nil
}

type CreateOptions struct {
	Sources     []string
	ArchivePath string
	Verbose     bool
}

type ListOptions struct {
	ArchivePath string
}

type ExtractOptions struct {
	ArchivePath string
	OutputPath  string
	Files       []string
	Verbose     bool
}

// Create Archive
func CreateArchive(options CreateOptions) (*common.BuildResult, error) {
	log.Info().Msgf("creation of %s archive has been started", options.ArchivePath)

	a := archive.NewArchiver()
	result, err := a.Create(archive.ArchiverOptions{
		Sources:    options.Sources,
		OutputFile: options.ArchivePath,
		Verbose:    options.Verbose,
	})
	if err != nil {
		log.Error().Err(err).Msgf("error while creating the archive %s", options.ArchivePath)
		return nil, err
	}

	logFailures(result.Failures)
	for _, entry := range result.Added {
		log.Debug().Str("name", entry.Name).Int64("size", entry.Size).Msg("file added to archive")
	}

	log.Info().
		Str("id", result.ID).
		Int("added", len(result.Added)).
		Int("skipped", len(result.Failures)).
		Int64("bytes", result.Length).
		Msgf("archive %s has been created", options.ArchivePath)
	return result, nil
}

// List Archive
func ListArchive(options ListOptions) (*common.ListResult, error) {
	a := archive.NewArchiver()
	result, err := a.List(options.ArchivePath)
	if err != nil {
		log.Error().Err(err).Msgf("error while listing the archive %s", options.ArchivePath)
		return nil, err
	}

	if result.Empty() {
		log.Warn().Msgf("archive %s is empty", options.ArchivePath)
	} else {
		log.Info().Str("id", result.ID).Int("entries", len(result.Entries)).Msgf("listed archive %s", options.ArchivePath)
	}
	return result, nil
}

// Extract every file in an archive
func ExtractArchive(options ExtractOptions) (*common.ExtractResult, error) {
	log.Info().Msgf("extracting archive %s to %s", options.ArchivePath, options.OutputPath)

	a := archive.NewArchiver()
	result, err := a.ExtractAll(archive.ArchiverOptions{
		ArchivePath: options.ArchivePath,
		OutputPath:  options.OutputPath,
		Verbose:     options.Verbose,
	})
	if err != nil {
		log.Error().Err(err).Msgf("error while extracting the archive %s", options.ArchivePath)
		return nil, err
	}

	logExtractResult(result)
	return result, nil
}

// Extract only the named files from an archive
func ExtractFiles(options ExtractOptions) (*common.ExtractResult, error) {
	log.Info().Msgf("extracting %d file(s) from archive %s to %s", len(options.Files), options.ArchivePath, options.OutputPath)

	a := archive.NewArchiver()
	result, err := a.ExtractSelected(archive.ArchiverOptions{
		ArchivePath: options.ArchivePath,
		OutputPath:  options.OutputPath,
		Names:       options.Files,
		Verbose:     options.Verbose,
	})
	if err != nil {
		log.Error().Err(err).Msgf("error while extracting from the archive %s", options.ArchivePath)
		return nil, err
	}

	for _, name := range result.Missing {
		log.Warn().Msgf("file %s was not found in archive %s", name, options.ArchivePath)
	}
	logExtractResult(result)
	return result, nil
}

func logExtractResult(result *common.ExtractResult) {
	logFailures(result.Failures)
	for _, entry := range result.Extracted {
		log.Debug().Str("name", entry.Name).Int64("size", entry.Size).Msg("file extracted")
	}

	log.Info().
		Str("id", result.ID).
		Int("extracted", len(result.Extracted)).
		Int("skipped", len(result.Failures)).
		Int("missing", len(result.Missing)).
		Msgf("archive %s extracted to %s", result.ArchivePath, result.OutputPath)
}

func logFailures(failures []*common.EntryError) {
	for _, failure := range failures {
		log.Warn().Err(failure.Err).Msgf("skipped %s", failure.Path)
	}
}
