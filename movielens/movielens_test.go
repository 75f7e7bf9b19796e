package movielens

import (
	"archive/zip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rushteam/recodata/core"
	"github.com/rushteam/recodata/dataset"
)

const uData = "196\t242\t3\t881250949\n186\t302\t3\t891717742\n22\t377\t1\t878887116\n196\t1\t4\t881251000\n"

// u.item 为 ISO-8859-1 编码，\xe9 即 é
const uItem = "1|Toy Story (1995)|01-Jan-1995||http://x|0|0|0|1|1|1|0|0|0|0|0|0|0|0|0|0|0|0|0\n" +
	"242|Kolya (1996)|24-Jan-1997||http://x|0|0|0|0|0|1|0|0|0|0|0|0|0|0|0|0|0|0|0\n" +
	"302|L.A. Confidential (1997)|01-Jan-1997||http://x|0|0|0|0|0|0|1|0|0|0|1|0|0|1|0|0|1|0|0\n" +
	"377|Caf\xe9 au lait|01-Jan-1994||http://x|0|0|0|0|0|1|0|0|0|0|0|0|0|0|0|0|0|0|0\n"

func writeZip(t *testing.T, dir, name string, files map[string]string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for entry, content := range files {
		w, err := zw.Create(entry)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return p
}

func ml100k(t *testing.T) string {
	return writeZip(t, t.TempDir(), "ml-100k.zip", map[string]string{
		"ml-100k/u.data": uData,
		"ml-100k/u.item": uItem,
	})
}

func TestFormatOf(t *testing.T) {
	if f, err := FormatOf("1M"); err != nil || f.Sep != "::" {
		t.Errorf("FormatOf(1M) = %+v, %v", f, err)
	}
	if _, err := FormatOf("5m"); !core.IsInvalidInput(err) {
		t.Errorf("FormatOf(5m) error = %v, want invalid input", err)
	}
	if got := Sizes(); !slices.Equal(got, []string{"100k", "10m", "1m", "20m"}) {
		t.Errorf("Sizes() = %v", got)
	}
}

func TestLoadRatings_FromZip(t *testing.T) {
	tbl, err := LoadRatings(ml100k(t), "100k")
	if err != nil {
		t.Fatalf("LoadRatings() error = %v", err)
	}
	if !slices.Equal(tbl.Columns(), DefaultHeader) {
		t.Errorf("Columns() = %v", tbl.Columns())
	}
	if tbl.Len() != 4 {
		t.Fatalf("rows = %d, want 4", tbl.Len())
	}
	rating, _ := tbl.Column(core.DefaultRatingCol)
	if rating.Kind() != dataset.KindFloat || rating.Floats()[3] != 4 {
		t.Errorf("rating column = %v %v", rating.Kind(), rating.Floats())
	}
	users, _ := tbl.Column(core.DefaultUserCol)
	if users.Kind() != dataset.KindInt || users.Ints()[0] != 196 {
		t.Errorf("user column = %v %v", users.Kind(), users.Ints())
	}
}

func TestLoadRatings_Header(t *testing.T) {
	src := ml100k(t)

	tbl, err := LoadRatings(src, "100k", "u", "i", "r", "ts", "extra")
	if err != nil {
		t.Fatalf("LoadRatings() error = %v", err)
	}
	if !slices.Equal(tbl.Columns(), []string{"u", "i", "r", "ts"}) {
		t.Errorf("Columns() = %v", tbl.Columns())
	}

	tbl, err = LoadRatings(src, "100k", "UserId", "ItemId")
	if err != nil {
		t.Fatalf("LoadRatings() error = %v", err)
	}
	if tbl.Width() != 2 {
		t.Errorf("Width() = %d, want 2", tbl.Width())
	}

	if _, err := LoadRatings(src, "100k", "only"); !core.IsInvalidInput(err) {
		t.Errorf("one column header: error = %v, want invalid input", err)
	}
	if _, err := LoadRatings(src, "3m"); !core.IsInvalidInput(err) {
		t.Errorf("bad size: error = %v, want invalid input", err)
	}
}

func TestLoadRatings_FromDirectory(t *testing.T) {
	dir := t.TempDir()
	zipPath := writeZip(t, dir, "ml-100k.zip", map[string]string{
		"ml-100k/u.data": uData,
		"ml-100k/u.item": uItem,
	})

	// 目录中只有 zip
	tbl, err := LoadRatings(dir, "100k")
	if err != nil || tbl.Len() != 4 {
		t.Fatalf("LoadRatings(dir with zip) = %v, %v", tbl, err)
	}

	// 解压后的平铺文件优先
	out := t.TempDir()
	ratingPath, itemPath, err := Extract("100k", zipPath, out)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if filepath.Base(ratingPath) != "u.data" || filepath.Base(itemPath) != "u.item" {
		t.Errorf("Extract() = %s, %s", ratingPath, itemPath)
	}
	tbl, err = LoadRatings(out, "100k")
	if err != nil || tbl.Len() != 4 {
		t.Fatalf("LoadRatings(extracted) = %v, %v", tbl, err)
	}

	if _, err := LoadRatings(t.TempDir(), "100k"); !core.IsNotFound(err) {
		t.Errorf("empty dir: error = %v, want not found", err)
	}
}

func TestLoadRatings_BadLine(t *testing.T) {
	src := writeZip(t, t.TempDir(), "ml-100k.zip", map[string]string{
		"ml-100k/u.data": "1\t2\t3\t4\n1\tx\t3\t4\n",
	})
	_, err := LoadRatings(src, "100k")
	if !core.IsInvalidInput(err) || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error = %v, want invalid input on line 2", err)
	}
}

func TestLoadItems_100k(t *testing.T) {
	items, err := LoadItems(ml100k(t), "100k", ItemOptions{TitleCol: "title", GenresCol: "genres", YearCol: "year"})
	if err != nil {
		t.Fatalf("LoadItems() error = %v", err)
	}
	if !slices.Equal(items.Columns(), []string{"itemID", "title", "genres", "year"}) {
		t.Fatalf("Columns() = %v", items.Columns())
	}
	title, _ := items.Column("title")
	genres, _ := items.Column("genres")
	year, _ := items.Column("year")

	if title.Strings()[3] != "Café au lait" {
		t.Errorf("title[3] = %q, want ISO-8859-1 decoded", title.Strings()[3])
	}
	wantGenres := []string{"Animation|Children's|Comedy", "Comedy", "Crime|Film-Noir|Mystery|Thriller", "Comedy"}
	if !slices.Equal(genres.Strings(), wantGenres) {
		t.Errorf("genres = %v, want %v", genres.Strings(), wantGenres)
	}
	if want := []string{"1995", "1996", "1997", ""}; !slices.Equal(year.Strings(), want) {
		t.Errorf("year = %v, want %v", year.Strings(), want)
	}

	none, err := LoadItems(ml100k(t), "100k", ItemOptions{})
	if err != nil || none != nil {
		t.Errorf("LoadItems(no columns) = %v, %v; want nil, nil", none, err)
	}
}

func TestLoadItems_20mCSV(t *testing.T) {
	src := writeZip(t, t.TempDir(), "ml-20m.zip", map[string]string{
		"ml-20m/ratings.csv": "userId,movieId,rating,timestamp\n1,2,3.5,1112486027\n1,29,3.5,1112484676\n",
		"ml-20m/movies.csv":  "movieId,title,genres\n2,Jumanji (1995),Adventure|Children|Fantasy\n29,\"City of Lost Children, The (Cité des enfants perdus, La) (1995)\",Adventure|Drama\n",
	})

	ratings, err := LoadRatings(src, "20m")
	if err != nil {
		t.Fatalf("LoadRatings() error = %v", err)
	}
	if ratings.Len() != 2 {
		t.Errorf("rows = %d, want 2 (header skipped)", ratings.Len())
	}

	items, err := LoadItems(src, "20m", ItemOptions{MovieCol: "movie", GenresCol: "genres", YearCol: "year"})
	if err != nil {
		t.Fatalf("LoadItems() error = %v", err)
	}
	if !slices.Equal(items.Columns(), []string{"movie", "genres", "year"}) {
		t.Errorf("Columns() = %v", items.Columns())
	}
	year, _ := items.Column("year")
	if want := []string{"1995", "1995"}; !slices.Equal(year.Strings(), want) {
		t.Errorf("year = %v, want %v", year.Strings(), want)
	}
}

func TestLoadRatingsWithItems(t *testing.T) {
	src := writeZip(t, t.TempDir(), "ml-1m.zip", map[string]string{
		"ml-1m/ratings.dat": "1::1193::5::978300760\n1::661::3::978302109\n2::9999::4::978300000\n",
		"ml-1m/movies.dat":  "1193::One Flew Over the Cuckoo's Nest (1975)::Drama\n661::James and the Giant Peach (1996)::Animation|Children's|Musical\n",
	})
	tbl, err := LoadRatingsWithItems(src, "1m", []string{"UserId", "ItemId", "Rating"}, ItemOptions{TitleCol: "Title", YearCol: "Year"})
	if err != nil {
		t.Fatalf("LoadRatingsWithItems() error = %v", err)
	}
	if !slices.Equal(tbl.Columns(), []string{"UserId", "ItemId", "Rating", "Title", "Year"}) {
		t.Errorf("Columns() = %v", tbl.Columns())
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows = %d, want 2 (inner join drops unknown movie)", tbl.Len())
	}
	years, _ := tbl.Column("Year")
	if !slices.Equal(years.Strings(), []string{"1975", "1996"}) {
		t.Errorf("Year = %v", years.Strings())
	}
}

func TestParseYear(t *testing.T) {
	tests := map[string]string{
		"Toy Story (1995)":         "1995",
		"(1995)":                   "1995",
		"Foo (a.k.a. Bar) (2001) ": "2001",
		"No Year":                  "",
		"Heat (abc)":               "",
		"Empty ()":                 "",
	}
	for title, want := range tests {
		if got := parseYear(title); got != want {
			t.Errorf("parseYear(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestDownload(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/ml-100k.zip" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("zip-bytes"))
	}))
	defer srv.Close()

	old := BaseURL
	BaseURL = srv.URL
	defer func() { BaseURL = old }()

	dir := filepath.Join(t.TempDir(), "cache")
	ctx := context.Background()
	p, err := Download(ctx, srv.Client(), "100k", dir)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	data, err := os.ReadFile(p)
	if err != nil || string(data) != "zip-bytes" {
		t.Fatalf("downloaded file = %q, %v", data, err)
	}

	// 已存在时不再请求
	if _, err := Download(ctx, srv.Client(), "100k", dir); err != nil {
		t.Fatalf("second Download() error = %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}

	if _, err := Download(ctx, srv.Client(), "1m", dir); !core.IsNotFound(err) {
		t.Errorf("404: error = %v, want not found", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "ml-1m.zip")); !os.IsNotExist(err) {
		t.Error("failed download left a file behind")
	}
}
