package movielens

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rushteam/recodata/core"
	"github.com/rushteam/recodata/pkg/logging"
)

// BaseURL 是数据集下载地址，测试时可以替换。
var BaseURL = "https://files.grouplens.org/datasets/movielens"

// Download 把 ml-<size>.zip 下载到 dir，文件已存在时直接返回其路径。client 为 nil 时使用 http.DefaultClient。
func Download(ctx context.Context, client *http.Client, size, dir string) (string, error) {
	if _, err := FormatOf(size); err != nil {
		return "", err
	}
	if client == nil {
		client = http.DefaultClient
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("movielens: %w", err)
	}

	dest := filepath.Join(dir, archiveName(size))
	if _, err := os.Stat(dest); err == nil {
		logging.Debug().Str("path", dest).Msg("movielens archive already downloaded")
		return dest, nil
	}

	url := strings.TrimSuffix(BaseURL, "/") + "/" + archiveName(size)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("movielens: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("movielens: download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", core.NewDomainError(core.ModuleMovielens, core.ErrorCodeNotFound,
			fmt.Sprintf("movielens: download %s: unexpected status %s", url, resp.Status))
	}

	// 先写临时文件再改名，中断的下载不会被当成已完成
	tmp, err := os.CreateTemp(dir, archiveName(size)+".*.part")
	if err != nil {
		return "", fmt.Errorf("movielens: %w", err)
	}
	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), dest)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("movielens: download %s: %w", url, err)
	}

	logging.Info().Str("url", url).Str("path", dest).Int64("bytes", n).Msg("movielens archive downloaded")
	return dest, nil
}

// Extract 从压缩包中取出评分文件与电影文件，平铺写入 dir，返回两个文件的路径。
// 两个文件都已存在时不做任何事。
func Extract(size, zipPath, dir string) (ratingPath, itemPath string, err error) {
	format, err := FormatOf(size)
	if err != nil {
		return "", "", err
	}
	ratingPath = filepath.Join(dir, path.Base(format.Path))
	itemPath = filepath.Join(dir, path.Base(format.ItemPath))
	if fileExists(ratingPath) && fileExists(itemPath) {
		return ratingPath, itemPath, nil
	}
	for entry, dest := range map[string]string{format.Path: ratingPath, format.ItemPath: itemPath} {
		if err := extractEntry(zipPath, entry, dest); err != nil {
			return "", "", err
		}
	}
	return ratingPath, itemPath, nil
}

func extractEntry(zipPath, entry, dest string) error {
	src, err := openZipEntry(zipPath, entry)
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("movielens: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("movielens: extract %s: %w", entry, err)
	}
	return out.Close()
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
