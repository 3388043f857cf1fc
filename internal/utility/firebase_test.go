package utility

import "testing"

func TestFirebaseObjectURL(t *testing.T) {
	firebaseBucket = "campfire-assets.appspot.com"
	t.Cleanup(func() { firebaseBucket = "" })

	got := FirebaseObjectURL("BR1_G1_RC1_9x16_V2.png")
	want := "https://firebasestorage.googleapis.com/v0/b/campfire-assets.appspot.com/o/BR1_G1_RC1_9x16_V2.png?alt=media"
	if got != want {
		t.Errorf("URL sai: got %q, want %q", got, want)
	}
}

func TestFirebaseObjectURLEscapesPath(t *testing.T) {
	firebaseBucket = "campfire-assets.appspot.com"
	t.Cleanup(func() { firebaseBucket = "" })

	got := FirebaseObjectURL("renders/BR1_G1_RC1_9x16_V2.png")
	want := "https://firebasestorage.googleapis.com/v0/b/campfire-assets.appspot.com/o/renders%2FBR1_G1_RC1_9x16_V2.png?alt=media"
	if got != want {
		t.Errorf("object path phải được escape: got %q, want %q", got, want)
	}
}

func TestFirebaseObjectURLWithoutBucket(t *testing.T) {
	// Chưa init Firebase thì không dựng được URL
	if got := FirebaseObjectURL("BR1_G1_RC1_9x16_V2.png"); got != "" {
		t.Errorf("bucket rỗng phải trả về chuỗi rỗng, got %q", got)
	}
	firebaseBucket = "campfire-assets.appspot.com"
	t.Cleanup(func() { firebaseBucket = "" })
	if got := FirebaseObjectURL(""); got != "" {
		t.Errorf("object path rỗng phải trả về chuỗi rỗng, got %q", got)
	}
}
