package locale

import (
	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
)

// Bucket names of the default threshold table.
const (
	BucketJustNow = "justNow"
	BucketSeconds = "seconds"
	BucketMinutes = "minutes"
	BucketHours   = "hours"
	BucketDays    = "days"
	BucketWeeks   = "weeks"
	BucketMonths  = "months"
	BucketYears   = "years"
)

func other(s string) map[locales.PluralRule]string {
	return map[locales.PluralRule]string{locales.PluralRuleOther: s}
}

func oneOther(one, many string) map[locales.PluralRule]string {
	return map[locales.PluralRule]string{locales.PluralRuleOne: one, locales.PluralRuleOther: many}
}

func englishCounted(unit string) BucketPhrases {
	return BucketPhrases{
		Past:   oneOther("{0} "+unit+" ago", "{0} "+unit+"s ago"),
		Future: oneOther("in {0} "+unit, "in {0} "+unit+"s"),
	}
}

// English returns the built-in en definition.
func English() Definition {
	return Definition{
		Translator: en.New(),
		Meridiem:   [2]string{"AM", "PM"},
		Fixed: map[string]string{
			KeyToday:     "today",
			KeyYesterday: "yesterday",
			KeyTomorrow:  "tomorrow",
			KeyAt:        "{0} at {1}",
		},
		Buckets: map[string]BucketPhrases{
			BucketJustNow: {Past: other("just now"), Future: other("just now")},
			BucketSeconds: englishCounted("second"),
			BucketMinutes: englishCounted("minute"),
			BucketHours:   englishCounted("hour"),
			BucketDays:    englishCounted("day"),
			BucketWeeks:   englishCounted("week"),
			BucketMonths:  englishCounted("month"),
			BucketYears:   englishCounted("year"),
		},
	}
}

func chineseCounted(unit string) BucketPhrases {
	return BucketPhrases{
		Past:   other("{0}" + unit + "前"),
		Future: other("{0}" + unit + "后"),
	}
}

// Chinese returns the built-in zh definition. Chinese has a single plural form.
func Chinese() Definition {
	return Definition{
		Translator: zh.New(),
		Meridiem:   [2]string{"上午", "下午"},
		Fixed: map[string]string{
			KeyToday:     "今天",
			KeyYesterday: "昨天",
			KeyTomorrow:  "明天",
			KeyAt:        "{0} {1}",
		},
		Buckets: map[string]BucketPhrases{
			BucketJustNow: {Past: other("刚刚"), Future: other("马上")},
			BucketSeconds: chineseCounted("秒"),
			BucketMinutes: chineseCounted("分钟"),
			BucketHours:   chineseCounted("小时"),
			BucketDays:    chineseCounted("天"),
			BucketWeeks:   chineseCounted("周"),
			BucketMonths:  chineseCounted("个月"),
			BucketYears:   chineseCounted("年"),
		},
	}
}
