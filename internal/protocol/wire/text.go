package wire

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeText переводит строку Go в UTF-16LE без BOM и терминатора.
// Некорректные последовательности UTF-8 заменяются на U+FFFD.
func EncodeText(s string) []byte {
	if s == "" {
		return nil
	}
	b, err := utf16le.NewEncoder().Bytes([]byte(strings.ToValidUTF8(s, "�")))
	if err != nil {
		// после ToValidUTF8 кодировщик ошибок не возвращает
		panic("wire: utf-16 encode: " + err.Error())
	}
	return b
}

// TextSize - размер строки в байтах UTF-16 (символы × 2), без префикса и терминатора.
func TextSize(s string) int {
	return len(EncodeText(s))
}

// DecodeText переводит UTF-16LE обратно в строку Go.
func DecodeText(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
