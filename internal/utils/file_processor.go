package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GeneratedFilePrefix marks files written by the generator; they are never read back as sources
const GeneratedFilePrefix = "autogen_"

// FileProcessor provides utilities for common file processing operations
type FileProcessor struct {
	fileReader *FileReader
}

// NewFileProcessor creates a new file processor
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{
		fileReader: NewFileReader(),
	}
}

// NewFileProcessorWithReader creates a file processor with an existing FileReader
func NewFileProcessorWithReader(reader *FileReader) *FileProcessor {
	return &FileProcessor{
		fileReader: reader,
	}
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info os.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
}

// DefaultGoFileFilter filters for .go files, excluding tests and autogen files
func DefaultGoFileFilter() FileFilter {
	return ExtensionFileFilter([]string{".go"})
}

// ExtensionFileFilter accepts files whose extension is in exts (compared
// case-insensitively). Go test files and generated files are always skipped.
func ExtensionFileFilter(exts []string) FileFilter {
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = true
	}

	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}

		name := info.Name()
		if strings.HasSuffix(name, "_test.go") || strings.HasPrefix(name, GeneratedFilePrefix) {
			return false
		}
		return allowed[strings.ToLower(filepath.Ext(name))]
	}
}

// GeneratedFileFilter matches generated files with the given name, or any
// generated file when name is empty
func GeneratedFileFilter(name string) FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}
		if name != "" {
			return info.Name() == name
		}
		return strings.HasPrefix(info.Name(), GeneratedFilePrefix)
	}
}

// DefaultDirectoryFilter skips common directories that shouldn't contain source code
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"testdata":     true,
		"build":        true,
		"dist":         true,
		"target":       true,
	}

	return func(path string, info os.DirEntry) bool {
		if !info.IsDir() {
			return true
		}

		name := info.Name()

		// Skip hidden directories
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}

		return !skipDirs[name]
	}
}

type fileInfoDirEntry struct {
	info os.FileInfo
}

func (f fileInfoDirEntry) Name() string               { return f.info.Name() }
func (f fileInfoDirEntry) IsDir() bool                { return f.info.IsDir() }
func (f fileInfoDirEntry) Type() os.FileMode          { return f.info.Mode().Type() }
func (f fileInfoDirEntry) Info() (os.FileInfo, error) { return f.info, nil }

// FileInfoEntry adapts os.FileInfo to os.DirEntry so filters can be applied to a single file
func FileInfoEntry(info os.FileInfo) os.DirEntry {
	return fileInfoDirEntry{info: info}
}

// WalkFiles walks through files in a directory tree with filtering. The
// directory filter is not applied to rootDir itself.
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matchedFiles []string
	root := filepath.Clean(rootDir)

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return err
		}

		dirEntry := fileInfoDirEntry{info: info}

		if info.IsDir() {
			if options.DirectoryFilter != nil && filepath.Clean(path) != root {
				if !options.DirectoryFilter(path, dirEntry) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if options.FileFilter == nil || options.FileFilter(path, dirEntry) {
			matchedFiles = append(matchedFiles, path)
		}

		return nil
	})

	return matchedFiles, err
}

// CleanDirectories removes generated files named fileName (any generated
// file when empty) from each directory tree
func (fp *FileProcessor) CleanDirectories(baseDirs []string, fileName string) ([]string, error) {
	var removedFiles []string

	if len(baseDirs) == 0 {
		baseDirs = []string{"."}
	}

	for _, baseDir := range baseDirs {
		matched, err := fp.WalkFiles(baseDir, FileWalkOptions{
			FileFilter:      GeneratedFileFilter(fileName),
			DirectoryFilter: DefaultDirectoryFilter(),
			SkipErrors:      true,
		})
		if err != nil {
			return removedFiles, WrapProcessError(fmt.Sprintf("directory clean %s", baseDir), err)
		}

		for _, path := range matched {
			if err := os.Remove(path); err != nil {
				return removedFiles, WrapProcessError(fmt.Sprintf("file removal %s", path), err)
			}
			removedFiles = append(removedFiles, path)
		}
	}

	return removedFiles, nil
}

// GetFileReader returns the underlying FileReader for advanced operations
func (fp *FileProcessor) GetFileReader() *FileReader {
	return fp.fileReader
}
