package sl

import (
	"log/slog"
	"strings"
)

func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{Key: "error", Value: slog.StringValue("")}
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

func Module(mod string) slog.Attr {
	return slog.Attr{
		Key:   "mod",
		Value: slog.StringValue(mod),
	}
}

// Secret logs only the head and tail of a sensitive value.
func Secret(key, value string) slog.Attr {
	return slog.Attr{
		Key:   key,
		Value: slog.StringValue(mask(value)),
	}
}

// Phone keeps the country prefix and the last digits of a phone number.
func Phone(phone string) slog.Attr {
	return slog.Attr{
		Key:   "phone",
		Value: slog.StringValue(mask(phone)),
	}
}

func mask(value string) string {
	if len(value) <= 6 {
		return strings.Repeat("*", len(value))
	}
	return value[:3] + strings.Repeat("*", len(value)-6) + value[len(value)-3:]
}
