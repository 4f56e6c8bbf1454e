package helpers

import (
	"math"
	"strconv"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB"}

// FormatFileSize 转为易读的文件大小，1024进制，最多保留两位小数
//
//	0 -> "0 Bytes", 1536 -> "1.5 KB", 1048576 -> "1 MB"
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	exp := 0
	for n := bytes; n >= 1024 && exp < len(sizeUnits)-1; n /= 1024 {
		exp++
	}
	value := float64(bytes) / math.Pow(1024, float64(exp))
	value = math.Round(value*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeUnits[exp]
}
