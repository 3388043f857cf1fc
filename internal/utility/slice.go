package utility

import "strings"

// SplitAndTrim tách chuỗi theo separator, trim khoảng trắng từng phần tử
// và loại bỏ phần tử rỗng. Chuỗi rỗng trả về nil.
func SplitAndTrim(s string, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Contains kiểm tra một phần tử có trong slice hay không
func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// Chunk chia slice thành các batch có tối đa size phần tử.
// Slice rỗng trả về nil; size <= 0 trả về một batch duy nhất chứa toàn bộ slice.
func Chunk[T any](slice []T, size int) [][]T {
	if len(slice) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]T{slice}
	}
	var chunks [][]T
	for start := 0; start < len(slice); start += size {
		end := start + size
		if end > len(slice) {
			end = len(slice)
		}
		chunks = append(chunks, slice[start:end])
	}
	return chunks
}

// Dedup loại bỏ các phần tử trùng lặp, giữ nguyên thứ tự xuất hiện đầu tiên
func Dedup[T comparable](slice []T) []T {
	seen := make(map[T]bool, len(slice))
	var out []T
	for _, v := range slice {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
