package utils

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SetupCloseHandler 收到 SIGINT/SIGTERM 时执行 callback，返回的通道在 callback 完成后关闭。
// callback 执行期间再次收到信号会直接退出。
func SetupCloseHandler(callback func()) <-chan struct{} {
	c := make(chan os.Signal, 2)
	done := make(chan struct{})
	var once sync.Once

	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		go func() {
			<-c
			log.Println("[Server] 再次收到退出信号，强制退出")
			os.Exit(1)
		}()
		once.Do(func() {
			callback()
			close(done)
		})
	}()

	return done
}
