package dataset

import (
	"log/slog"

	"github.com/hupe1980/colgo/codec"
	"github.com/hupe1980/colgo/colio"
	"github.com/hupe1980/colgo/manifest"
	"github.com/hupe1980/colgo/resource"
)

// defaultConcurrency bounds concurrent column transfers per Write/Open.
const defaultConcurrency = 8

// WriteOptions configures Write.
type WriteOptions struct {
	// Compression selects the block compression of the column files.
	// Defaults to none, which keeps files mmap-friendly for local reads.
	Compression colio.CompressionType

	// SortKey declares which columns the table is sorted by, in key
	// order. Write records it in the manifest but does not verify the
	// ordering; a wrong declaration yields wrong search results later.
	SortKey []manifest.SortField

	// Codec encodes the manifest. Defaults to codec.Default.
	Codec codec.Codec

	// Logger receives progress and cleanup diagnostics. Nil disables
	// logging.
	Logger *slog.Logger

	// Controller paces column-file writes and bounds their IO rate.
	Controller *resource.Controller

	// Concurrency bounds parallel column uploads. Defaults to 8.
	Concurrency int
}

// OpenOptions configures Open.
type OpenOptions struct {
	// Version pins a manifest version ID. 0 opens the current version.
	Version uint64

	// VerifyChecksum validates column-file checksums while reading.
	// Defaults to true.
	VerifyChecksum bool

	// Codec decodes the manifest. Defaults to codec.Default.
	Codec codec.Codec

	// Logger receives open diagnostics and is also wired into the
	// dataset's searcher. Nil disables logging.
	Logger *slog.Logger

	// Controller accounts decoded column memory, paces reads, and
	// bounds search worker fan-out.
	Controller *resource.Controller

	// Concurrency bounds parallel column reads. Defaults to 8.
	Concurrency int
}

func applyWriteOptions(optFns []func(o *WriteOptions)) WriteOptions {
	opts := WriteOptions{
		Codec:       codec.Default,
		Concurrency: defaultConcurrency,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return opts
}

func applyOpenOptions(optFns []func(o *OpenOptions)) OpenOptions {
	opts := OpenOptions{
		VerifyChecksum: true,
		Codec:          codec.Default,
		Concurrency:    defaultConcurrency,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return opts
}
