package movielens

import (
	"archive/zip"
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rushteam/recodata/core"
)

// openEntry 打开数据文件 entry（压缩包内路径，如 ml-100k/u.data）。
//
// src 为目录时依次尝试：目录下同名文件（Extract 的输出）、解压后的原始目录结构、目录下的 ml-<size>.zip；
// 否则把 src 当作 zip 文件。
func openEntry(src, size, entry string) (io.ReadCloser, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("movielens: %w", err)
	}
	if !info.IsDir() {
		return openZipEntry(src, entry)
	}

	for _, p := range []string{
		filepath.Join(src, path.Base(entry)),
		filepath.Join(src, filepath.FromSlash(entry)),
	} {
		f, err := os.Open(p)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("movielens: %w", err)
		}
	}
	archive := filepath.Join(src, archiveName(size))
	if _, err := os.Stat(archive); err != nil {
		return nil, core.WrapDomainError(core.ModuleMovielens, core.ErrorCodeNotFound,
			fmt.Sprintf("movielens: %s not found under %s", entry, src), err)
	}
	return openZipEntry(archive, entry)
}

type zipEntry struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (z *zipEntry) Close() error {
	err := z.ReadCloser.Close()
	if cerr := z.archive.Close(); err == nil {
		err = cerr
	}
	return err
}

func openZipEntry(zipPath, entry string) (io.ReadCloser, error) {
	archive, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("movielens: open %s: %w", zipPath, err)
	}
	f, err := archive.Open(entry)
	if err != nil {
		archive.Close()
		return nil, core.WrapDomainError(core.ModuleMovielens, core.ErrorCodeNotFound,
			fmt.Sprintf("movielens: %s not found in %s", entry, zipPath), err)
	}
	return &zipEntry{ReadCloser: f, archive: archive}, nil
}

// readRecords 逐条读取分隔文本。逗号分隔时按 CSV 处理（标题中可能带引号和逗号），
// 其他分隔符按行切分。fn 收到的行号从 1 开始。
func readRecords(r io.Reader, sep string, header bool, fn func(line int, rec []string) error) error {
	if sep == "," {
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.ReuseRecord = true
		for line := 1; ; line++ {
			rec, err := cr.Read()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("movielens: %w", err)
			}
			if header && line == 1 {
				continue
			}
			if err := fn(line, rec); err != nil {
				return err
			}
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" || (header && line == 1) {
			continue
		}
		if err := fn(line, strings.Split(text, sep)); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("movielens: %w", err)
	}
	return nil
}

func parseError(entry string, line int, msg string, err error) error {
	return core.WrapDomainError(core.ModuleMovielens, core.ErrorCodeInvalidInput,
		fmt.Sprintf("movielens: %s line %d: %s", entry, line, msg), err)
}
