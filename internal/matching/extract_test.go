package matching

import "testing"

func TestExtractMeta_Total(t *testing.T) {
	cfg := DefaultConfig()

	inputs := []string{
		"",
		".zip",
		"___",
		"Просто текст без правил.fb2",
		"1941-1945.zip",
		"random_thumb.jpg",
	}

	for _, in := range inputs {
		meta := cfg.ExtractMeta(in)
		if meta.Author == "" {
			t.Errorf("ExtractMeta(%q) returned empty author", in)
		}
	}
}

func TestExtractMeta_DashSeparator(t *testing.T) {
	cfg := DefaultConfig()

	meta := cfg.ExtractMeta("Сергей Лукьяненко - Ночной дозор.fb2")
	if meta.Author != "Сергей Лукьяненко" {
		t.Errorf("author = %q, want %q", meta.Author, "Сергей Лукьяненко")
	}
	if meta.Title != "Ночной дозор" {
		t.Errorf("title = %q, want %q", meta.Title, "Ночной дозор")
	}
}

func TestExtractMeta_DashBetweenDigitsNotSplit(t *testing.T) {
	cfg := DefaultConfig()

	meta := cfg.ExtractMeta("Хроники 1941-1945.zip")
	if meta.Author != UnknownAuthor {
		t.Errorf("author = %q, want %q (year range must not split)", meta.Author, UnknownAuthor)
	}
	if meta.Title != "Хроники 1941-1945" {
		t.Errorf("title = %q, want %q", meta.Title, "Хроники 1941-1945")
	}
}

func TestExtractMeta_StripsAndOthersSuffix(t *testing.T) {
	cfg := DefaultConfig()

	meta := cfg.ExtractMeta("Иванов и др. - Хроники севера.zip")
	if meta.Author != "Иванов" {
		t.Errorf("author = %q, want %q", meta.Author, "Иванов")
	}
}

func TestExtractMeta_KnownAuthorScan(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KnownAuthors = append(cfg.KnownAuthors, "Иванов Иван")

	meta := cfg.ExtractMeta("Иванов_Иван_Хроники_севера.zip")
	if meta.Author != "Иванов Иван" {
		t.Errorf("author = %q, want %q", meta.Author, "Иванов Иван")
	}
	if meta.Title != "Хроники севера" {
		t.Errorf("title = %q, want %q", meta.Title, "Хроники севера")
	}
}

func TestExtractMeta_SeriesIndicatorPrefixesTitle(t *testing.T) {
	cfg := DefaultConfig()

	meta := cfg.ExtractMeta("Панов - Грибница тьмы.fb2")
	if meta.Title != "цикл Грибница тьмы" {
		t.Errorf("title = %q, want series marker prefix", meta.Title)
	}

	// Already marked titles are not double-prefixed
	meta = cfg.ExtractMeta("Панов - цикл Грибница тьмы.fb2")
	if meta.Title != "цикл Грибница тьмы" {
		t.Errorf("title = %q, marker must not repeat", meta.Title)
	}
}

func TestExtractMeta_Fallback(t *testing.T) {
	cfg := DefaultConfig()

	meta := cfg.ExtractMeta("непонятное_имя_файла.fb2")
	if meta.Author != UnknownAuthor {
		t.Errorf("author = %q, want %q", meta.Author, UnknownAuthor)
	}
	if meta.Title != "непонятное имя файла" {
		t.Errorf("title = %q, want cleaned stem", meta.Title)
	}
}

func TestExtractMeta_FB2ZipExtension(t *testing.T) {
	cfg := DefaultConfig()

	meta := cfg.ExtractMeta("Автор - Название.fb2.zip")
	if meta.Title != "Название" {
		t.Errorf("title = %q, want %q", meta.Title, "Название")
	}
}
