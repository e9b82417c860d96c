// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	flag "github.com/spf13/pflag"
	"golang.org/x/crypto/ssh"

	"github.com/usbarmory/GoTEE-dma350/trusted_os_sim/cmd"
	"github.com/usbarmory/GoTEE-dma350/trusted_os_sim/internal"
	"github.com/usbarmory/GoTEE-dma350/util"
)

var (
	listen        = flag.StringP("listen", "l", "127.0.0.1:2222", "SSH console listen address")
	nonSecure     = flag.Bool("nonsecure", false, "run the DMA library in Non-secure state")
	async         = flag.Bool("async", false, "complete DMA commands asynchronously")
	hostKey       = flag.String("host-key", "", "SSH host private key (PEM), random when empty")
	authorizedKey = flag.String("authorized-key", "", "SSH authorized public key, no authentication when empty")
)

func init() {
	log.SetFlags(log.Ltime)
	log.SetOutput(os.Stdout)
}

func console() (c *util.Console, err error) {
	c = &util.Console{
		Banner:  cmd.Banner,
		Help:    cmd.Help(nil),
		Handler: cmd.Handle,
	}

	if len(*hostKey) > 0 {
		pem, err := os.ReadFile(*hostKey)

		if err != nil {
			return nil, err
		}

		if c.HostKey, err = ssh.ParsePrivateKey(pem); err != nil {
			return nil, fmt.Errorf("invalid host key, %v", err)
		}
	}

	if len(*authorizedKey) > 0 {
		buf, err := os.ReadFile(*authorizedKey)

		if err != nil {
			return nil, err
		}

		if c.AuthorizedKey, _, _, _, err = ssh.ParseAuthorizedKey(buf); err != nil {
			return nil, fmt.Errorf("invalid authorized key, %v", err)
		}
	}

	return
}

func main() {
	flag.Parse()

	system, err := internal.NewSystem(!*nonSecure, *async)

	if err != nil {
		log.Fatalf("DMA system error, %v", err)
	}

	cmd.Banner = fmt.Sprintf("%s/%s (%s) • DMA-350 simulator", runtime.GOOS, runtime.GOARCH, runtime.Version())
	cmd.System = system

	c, err := console()

	if err != nil {
		log.Fatalf("DMA console error, %v", err)
	}

	l, err := net.Listen("tcp", *listen)

	if err != nil {
		log.Fatalf("DMA listen error, %v", err)
	}

	if err = c.Start(l); err != nil {
		log.Fatalf("DMA console error, %v", err)
	}

	log.Printf("DMA console listening on %s", l.Addr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	l.Close()

	log.Printf("DMA says goodbye")
}
