package lake

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

const readBatch = 8192

// WriteRows writes rows to a single parquet file, creating parent
// directories. The file is staged with a temp name and renamed into place so
// readers never observe a partial file.
func WriteRows[T any](path string, rows []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	writer := parquet.NewGenericWriter[T](f, parquet.Compression(&parquet.Snappy))
	if _, err := writer.Write(rows); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write parquet %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("close parquet writer %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// ReadRows reads every row of one parquet file.
func ReadRows[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[T](f)
	defer reader.Close()

	rows := make([]T, 0, reader.NumRows())
	buf := make([]T, readBatch)
	for {
		n, err := reader.Read(buf)
		rows = append(rows, buf[:n]...)
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
}

// ReadTable reads and concatenates all partition files of a table, in sorted
// file order. A missing table yields no rows.
func ReadTable[T any](tableDir string) ([]T, error) {
	files, err := ListPartitionedFiles(tableDir)
	if err != nil {
		return nil, err
	}
	var rows []T
	for _, path := range files {
		part, err := ReadRows[T](path)
		if err != nil {
			return nil, err
		}
		rows = append(rows, part...)
	}
	return rows, nil
}

// ReadYear reads all partition files under one year=Y directory of a table.
func ReadYear[T any](tableDir string, year int32) ([]T, error) {
	return ReadTable[T](YearDir(tableDir, year))
}

// ReplacePartition replaces the single parquet file of a partition directory
// with the given rows. An existing file is removed first when rows is empty,
// so a recompute that produces nothing leaves no stale data behind.
func ReplacePartition[T any](dir, table string, rows []T) error {
	path := filepath.Join(dir, table+".parquet")
	if len(rows) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
		return nil
	}
	return WriteRows(path, rows)
}
