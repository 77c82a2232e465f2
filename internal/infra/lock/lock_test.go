package lock

import "testing"

func TestLockIsExclusivePerLibrary(t *testing.T) {
	libs := Libraries{Dir: t.TempDir()}

	release, err := libs.Lock([]string{"/library/master", "/library/web"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := libs.Lock([]string{"/library/web"}); err == nil {
		t.Fatalf("expected second lock on the same library to fail")
	}

	other, err := libs.Lock([]string{"/library/desktop"})
	if err != nil {
		t.Fatalf("unexpected error for unrelated library: %v", err)
	}
	if err := other(); err != nil {
		t.Fatalf("release: %v", err)
	}

	if err := release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	again, err := libs.Lock([]string{"/library/web"})
	if err != nil {
		t.Fatalf("expected lock to be free after release: %v", err)
	}
	again()
}

func TestPathIsStable(t *testing.T) {
	libs := Libraries{Dir: "/tmp/locks"}
	if libs.Path("/library/web/") != libs.Path("/library/web") {
		t.Fatalf("expected trailing slash to be ignored")
	}
	if libs.Path("/library/web") == libs.Path("/library/master") {
		t.Fatalf("expected distinct lock files")
	}
}
