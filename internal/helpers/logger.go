package helpers

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"
	"gopkg.in/natefinch/lumberjack.v2"
)

var AppLogger *QLogger
var TeraBoxLog *QLogger
var WebLog *QLogger

var rotateCron *cron.Cron

func init() {
	// 未调用InitLogger之前只输出到控制台，避免测试或命令行场景下出现空指针
	AppLogger = NewConsoleLogger()
	TeraBoxLog = NewConsoleLogger()
	WebLog = NewConsoleLogger()
}

type QLogger struct {
	*log.Logger
	rotate    bool
	console   bool
	lumLogger *lumberjack.Logger
}

func (q *QLogger) Close() {
	if q.lumLogger != nil {
		q.lumLogger.Close()
	}
}

func (q *QLogger) Infof(format string, args ...interface{}) {
	q.Logger.Printf("[INFO] "+format, args...)
}

func (q *QLogger) Info(format string) {
	q.Logger.Println("[INFO] " + format)
}

func (q *QLogger) Debugf(format string, args ...interface{}) {
	q.Logger.Printf("[DEBUG] "+format, args...)
}

func (q *QLogger) Errorf(format string, args ...interface{}) {
	q.Logger.Printf("[ERROR] "+format, args...)
}

func (q *QLogger) Error(format string) {
	q.Logger.Println("[ERROR] " + format)
}

func (q *QLogger) Fatalf(format string, args ...interface{}) {
	q.Logger.Fatalf("[FATAL] "+format, args...)
}

func (q *QLogger) Warnf(format string, args ...interface{}) {
	q.Logger.Printf("[WARN] "+format, args...)
}

func (q *QLogger) Warn(format string) {
	q.Logger.Println("[WARN] " + format)
}

// NewConsoleLogger 只写控制台的日志记录器
func NewConsoleLogger() *QLogger {
	return &QLogger{
		Logger:  log.New(os.Stdout, "", log.Ldate|log.Ltime|log.Lmicroseconds),
		console: true,
	}
}

func NewLogger(logDir string, logFileName string, isConsole bool, rotate bool) *QLogger {
	logFile := filepath.Join(logDir, logFileName)
	var lumLogger *lumberjack.Logger
	// 创建多写入器
	var writers []io.Writer

	// 文件写入器
	if rotate {
		lumLogger = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10,   // 最大10MB
			MaxBackups: 3,    // 3个备份
			MaxAge:     7,    //days
			Compress:   true, // disabled by default
		}
		writers = append(writers, lumLogger)
	} else {
		fd, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Printf("Failed to open log file: %v", err)
			isConsole = true
		} else {
			writers = append(writers, fd)
		}
	}
	if isConsole {
		// 同时写入文件和控制台
		writers = append(writers, os.Stdout)
	}
	multiWriter := io.MultiWriter(writers...)

	// 创建一个新的日志记录器，包含日期、时间和微秒
	logger := log.New(multiWriter, "", log.Ldate|log.Ltime|log.Lmicroseconds)

	return &QLogger{
		Logger:    logger,
		rotate:    rotate,
		console:   isConsole,
		lumLogger: lumLogger,
	}
}

// InitLogger 按配置初始化所有日志记录器，并在配置了rotateCron时启动定时轮转
func InitLogger(cfg ConfigLog) error {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return fmt.Errorf("创建日志目录失败: %w", err)
	}
	AppLogger = NewLogger(cfg.Dir, cfg.File, cfg.Console, cfg.Rotate)
	TeraBoxLog = NewLogger(cfg.Dir, cfg.TeraBox, cfg.Console, cfg.Rotate)
	WebLog = NewLogger(cfg.Dir, cfg.Web, cfg.Console, cfg.Rotate)
	if cfg.Rotate && cfg.RotateCron != "" {
		return StartLogRotation(cfg.RotateCron)
	}
	return nil
}

// StartLogRotation 使用cron表达式定时轮转日志文件
func StartLogRotation(spec string) error {
	if rotateCron != nil {
		rotateCron.Stop()
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, RotateLog); err != nil {
		return fmt.Errorf("日志轮转表达式无效 %q: %w", spec, err)
	}
	c.Start()
	rotateCron = c
	AppLogger.Infof("已启动日志定时轮转: %s", spec)
	return nil
}

func loggers() []*QLogger {
	return []*QLogger{AppLogger, TeraBoxLog, WebLog}
}

func CloseLogger() {
	if rotateCron != nil {
		<-rotateCron.Stop().Done()
		rotateCron = nil
	}
	for _, l := range loggers() {
		if l != nil {
			l.Close()
		}
	}
	fmt.Println("已关闭所有日志记录器")
}

func RotateLog() {
	for _, l := range loggers() {
		if l != nil && l.rotate && l.lumLogger != nil {
			if err := l.lumLogger.Rotate(); err != nil {
				log.Printf("轮转日志失败: %v", err)
			}
		}
	}
	fmt.Println("已轮转所有日志文件")
}

// RedirectConsole 把所有日志改写到w，命令行输出JSON到stdout时使用
func RedirectConsole(w io.Writer) {
	for _, l := range loggers() {
		if l != nil {
			l.SetOutput(w)
		}
	}
}
