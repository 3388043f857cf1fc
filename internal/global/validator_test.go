package global

import "testing"

func setupValidator(t *testing.T) {
	t.Helper()
	if Validate == nil {
		InitValidator()
	}
}

func TestValidateAspectRatio(t *testing.T) {
	setupValidator(t)

	valid := []string{"9x16", "3x5", "1x1", "16x9", "1080x1920", ""}
	for _, v := range valid {
		if err := Validate.Var(v, "aspect_ratio"); err != nil {
			t.Errorf("aspect ratio %q phải hợp lệ: %v", v, err)
		}
	}

	invalid := []string{"9:16", "x16", "9x", "axb", "9 x 16"}
	for _, v := range invalid {
		if err := Validate.Var(v, "aspect_ratio"); err == nil {
			t.Errorf("aspect ratio %q phải bị từ chối", v)
		}
	}
}

func TestValidateReviewDecision(t *testing.T) {
	setupValidator(t)

	for _, v := range []string{"approve", "reject", "edit"} {
		if err := Validate.Var(v, "review_decision"); err != nil {
			t.Errorf("action %q phải hợp lệ: %v", v, err)
		}
	}
	for _, v := range []string{"", "delete", "Approve", "ok"} {
		if err := Validate.Var(v, "review_decision"); err == nil {
			t.Errorf("action %q phải bị từ chối", v)
		}
	}
}

func TestValidateNoXSS(t *testing.T) {
	setupValidator(t)

	safe := []string{
		"Đổi màu nền sang xanh đậm hơn",
		"Logo bị lệch, căn giữa lại giúp mình",
		"",
	}
	for _, v := range safe {
		if err := Validate.Var(v, "no_xss"); err != nil {
			t.Errorf("comment %q an toàn nhưng bị chặn: %v", v, err)
		}
	}

	dangerous := []string{
		"<script>alert(1)</script>",
		"a href=javascript:void(0)",
		"<img src=x onerror=alert(1)>",
		"<IFRAME src='http://x'>",
	}
	for _, v := range dangerous {
		if err := Validate.Var(v, "no_xss"); err == nil {
			t.Errorf("payload %q phải bị chặn", v)
		}
	}
}
