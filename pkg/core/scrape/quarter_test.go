package scrape

import "testing"

func TestClassifyQuarter(t *testing.T) {
	cases := []struct {
		description string
		want        Quarter
	}{
		{"有価証券報告書-第145期(令和2年1月1日-令和2年12月31日)", QuarterOther},
		{"四半期報告書-第146期第1四半期(令和3年1月1日-令和3年3月31日)", Quarter1},
		{"四半期報告書-第146期第2四半期(令和3年4月1日-令和3年6月30日)", Quarter2},
		{"四半期報告書-第146期第3四半期(令和3年7月1日-令和3年9月30日)", Quarter3},
		// Full-width digits normalize before matching.
		{"四半期報告書-第１四半期", Quarter1},
		{"", QuarterOther},
		{"半期報告書", QuarterOther},
	}
	for _, c := range cases {
		if got := ClassifyQuarter(c.description); got != c.want {
			t.Errorf("ClassifyQuarter(%q) = %v, want %v", c.description, got, c.want)
		}
	}
}

func TestQuarterString(t *testing.T) {
	cases := map[Quarter]string{
		Quarter1:     "Q1",
		Quarter2:     "Q2",
		Quarter3:     "Q3",
		QuarterOther: "Other",
	}
	for q, want := range cases {
		if got := q.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(q), got, want)
		}
	}
}
