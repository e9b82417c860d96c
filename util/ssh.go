// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"net"

	"golang.org/x/crypto/ssh"
	"golang.org/x/term"
)

// Console represents an SSH console instance, each session gets its own
// terminal.
type Console struct {
	// Banner is the login welcome banner
	Banner string
	// Help is the `help` command output
	Help string
	// Handler is the terminal command handler
	Handler func(*term.Terminal, string) error

	// HostKey is the server host key, a random one is generated when nil
	HostKey ssh.Signer
	// AuthorizedKey, when set, is the only client key allowed to log in,
	// otherwise no client authentication is performed.
	AuthorizedKey ssh.PublicKey
}

// parsePtyRequest returns the terminal size of a pty-req payload
// (p10, 6.2. Requesting a Pseudo-Terminal, RFC4254).
func parsePtyRequest(p []byte) (w int, h int, err error) {
	if len(p) < 4 {
		return 0, 0, errors.New("malformed pty-req request")
	}

	termVariableSize := int(binary.BigEndian.Uint32(p))

	if len(p) < 4+termVariableSize+8 {
		return 0, 0, errors.New("malformed pty-req request")
	}

	return parseWindowChange(p[4+termVariableSize:])
}

// parseWindowChange returns the terminal size of a window-change payload
// (p10, 6.7. Window Dimension Change Message, RFC4254).
func parseWindowChange(p []byte) (w int, h int, err error) {
	if len(p) < 8 {
		return 0, 0, errors.New("malformed window-change request")
	}

	w = int(binary.BigEndian.Uint32(p))
	h = int(binary.BigEndian.Uint32(p[4:]))

	return
}

func (c *Console) session(t *term.Terminal) {
	fmt.Fprintf(t, "%s\n", c.Banner)
	fmt.Fprintf(t, "%s\n", string(t.Escape.Cyan)+c.Help+string(t.Escape.Reset))

	for {
		cmd, err := t.ReadLine()

		if err == io.EOF {
			break
		}

		if err != nil {
			log.Printf("readline error, %v", err)
			continue
		}

		err = c.Handler(t, cmd)

		if err == io.EOF {
			break
		}

		if err != nil {
			fmt.Fprintf(t, "%serror: %v%s\n", t.Escape.Red, err, t.Escape.Reset)
		}
	}
}

func (c *Console) handleRequests(t *term.Terminal, requests <-chan *ssh.Request) {
	for req := range requests {
		switch req.Type {
		case "shell":
			// do not accept payload commands
			_ = req.Reply(len(req.Payload) == 0, nil)
		case "pty-req":
			w, h, err := parsePtyRequest(req.Payload)

			if err != nil {
				log.Printf("%v", err)
				_ = req.Reply(false, nil)
				continue
			}

			_ = t.SetSize(w, h)
			_ = req.Reply(true, nil)
		case "window-change":
			w, h, err := parseWindowChange(req.Payload)

			if err != nil {
				log.Printf("%v", err)
				continue
			}

			_ = t.SetSize(w, h)
		default:
			if req.WantReply {
				_ = req.Reply(false, nil)
			}
		}
	}
}

func (c *Console) handleChannel(newChannel ssh.NewChannel) {
	if t := newChannel.ChannelType(); t != "session" {
		_ = newChannel.Reject(ssh.UnknownChannelType, fmt.Sprintf("unknown channel type: %s", t))
		return
	}

	conn, requests, err := newChannel.Accept()

	if err != nil {
		log.Printf("error accepting channel, %v", err)
		return
	}

	t := term.NewTerminal(conn, "")
	t.SetPrompt(string(t.Escape.Red) + "> " + string(t.Escape.Reset))

	go c.handleRequests(t, requests)

	go func() {
		defer conn.Close()

		out := log.Writer()

		log.SetOutput(io.MultiWriter(out, t))
		defer log.SetOutput(out)

		c.session(t)

		log.Printf("closing ssh session")
	}()
}

func (c *Console) listen(listener net.Listener, srv *ssh.ServerConfig) {
	for {
		conn, err := listener.Accept()

		if errors.Is(err, net.ErrClosed) {
			return
		}

		if err != nil {
			log.Printf("error accepting connection, %v", err)
			continue
		}

		sshConn, chans, reqs, err := ssh.NewServerConn(conn, srv)

		if err != nil {
			log.Printf("error accepting handshake, %v", err)
			continue
		}

		log.Printf("new ssh connection from %s (%s)", sshConn.RemoteAddr(), sshConn.ClientVersion())

		go ssh.DiscardRequests(reqs)

		go func() {
			for newChannel := range chans {
				go c.handleChannel(newChannel)
			}
		}()
	}
}

func (c *Console) serverConfig() (srv *ssh.ServerConfig, err error) {
	srv = &ssh.ServerConfig{}

	if c.AuthorizedKey == nil {
		srv.NoClientAuth = true
	} else {
		authorized := c.AuthorizedKey.Marshal()

		srv.PublicKeyCallback = func(conn ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if !bytes.Equal(key.Marshal(), authorized) {
				return nil, fmt.Errorf("unknown public key for %s", conn.User())
			}

			return nil, nil
		}
	}

	signer := c.HostKey

	if signer == nil {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)

		if err != nil {
			return nil, fmt.Errorf("private key generation error, %v", err)
		}

		if signer, err = ssh.NewSignerFromKey(key); err != nil {
			return nil, fmt.Errorf("key conversion error, %v", err)
		}
	}

	log.Printf("starting ssh server (%s)", ssh.FingerprintSHA256(signer.PublicKey()))

	srv.AddHostKey(signer)

	return
}

// Start instantiates an SSH console on the given listener.
func (c *Console) Start(listener net.Listener) (err error) {
	srv, err := c.serverConfig()

	if err != nil {
		return
	}

	go c.listen(listener, srv)

	return
}
