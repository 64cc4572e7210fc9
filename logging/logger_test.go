package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
)

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New("notecard", "debug", &buf, false)
	logger.Debug("排版完成", "size", 100)
	logger.Trace("不应输出")

	out := buf.String()
	if !strings.Contains(out, "[DEBUG]") || !strings.Contains(out, "notecard: 排版完成") || !strings.Contains(out, "size=100") {
		t.Fatalf("文本日志格式异常: %q", out)
	}
	if strings.Contains(out, "不应输出") {
		t.Fatalf("trace 低于 debug，不应输出")
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("非终端输出不应包含颜色控制符")
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	New("pipeline", "info", &buf, true).Info("完成", "success", 2)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("JSON 日志无法解析: %v (%q)", err, buf.String())
	}
	if entry["@message"] != "完成" || entry["@module"] != "pipeline" || entry["success"] != float64(2) {
		t.Fatalf("JSON 字段异常: %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("WARN") != hclog.Warn {
		t.Fatalf("级别应不区分大小写")
	}
	if ParseLevel("") != hclog.Info || ParseLevel("verbose") != hclog.Info {
		t.Fatalf("无法识别的级别应回退到 info")
	}
	if ValidLevel("verbose") || !ValidLevel("error") || !ValidLevel("") {
		t.Fatalf("ValidLevel 判断错误")
	}
}
