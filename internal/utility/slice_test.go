package utility

import "testing"

func TestChunkSplitsByCeilOfSize(t *testing.T) {
	items := make([]string, 23)
	for i := range items {
		items[i] = string(rune('a' + i%26))
	}

	chunks := Chunk(items, 10)
	if len(chunks) != 3 {
		t.Fatalf("23 phần tử chia chunk 10 phải ra 3 chunk, got %d", len(chunks))
	}
	if len(chunks[0]) != 10 || len(chunks[1]) != 10 || len(chunks[2]) != 3 {
		t.Errorf("kích thước chunk sai: %d, %d, %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	for i, chunk := range chunks {
		if len(chunk) > 10 {
			t.Errorf("chunk %d vượt giới hạn 10 phần tử", i)
		}
	}
}

func TestChunkExactMultiple(t *testing.T) {
	chunks := Chunk([]int{1, 2, 3, 4}, 2)
	if len(chunks) != 2 || len(chunks[0]) != 2 || len(chunks[1]) != 2 {
		t.Errorf("4 phần tử chia chunk 2 phải ra 2 chunk đủ, got %v", chunks)
	}
}

func TestChunkEmptyAndSmall(t *testing.T) {
	if chunks := Chunk([]int{}, 10); len(chunks) != 0 {
		t.Errorf("slice rỗng không được sinh chunk, got %v", chunks)
	}
	chunks := Chunk([]int{7}, 10)
	if len(chunks) != 1 || len(chunks[0]) != 1 {
		t.Errorf("1 phần tử phải ra đúng 1 chunk, got %v", chunks)
	}
}

func TestDedupPreservesOrder(t *testing.T) {
	got := Dedup([]string{"BR1", "BR2", "BR1", "BR3", "BR2"})
	want := []string{"BR1", "BR2", "BR3"}
	if len(got) != len(want) {
		t.Fatalf("dedup sai: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dedup phải giữ thứ tự xuất hiện đầu tiên: got %v, want %v", got, want)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := SplitAndTrim(" BR1, BR2 ,,  BR3 ", ",")
	want := []string{"BR1", "BR2", "BR3"}
	if len(got) != len(want) {
		t.Fatalf("split sai: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("vị trí %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitAndTrimBlankInput(t *testing.T) {
	if got := SplitAndTrim("   ", ","); got != nil {
		t.Errorf("chuỗi trắng phải trả về nil, got %v", got)
	}
	if got := SplitAndTrim("", ","); got != nil {
		t.Errorf("chuỗi rỗng phải trả về nil, got %v", got)
	}
}

func TestContains(t *testing.T) {
	slice := []string{"password", "token"}
	if !Contains(slice, "token") {
		t.Error("phải tìm thấy phần tử có trong slice")
	}
	if Contains(slice, "status") {
		t.Error("không được tìm thấy phần tử ngoài slice")
	}
}
