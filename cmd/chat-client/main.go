// A manual, interactive client for the TLS chat server.
//
// It forwards stdin lines to the server and prints everything it gets
// back. It also remembers the session token issued on login: if the
// connection drops, the client keeps retrying for its reconnect
// allowance and resumes the session with TOKEN_AUTH, getting back into
// the room it was in.
package main

import (
    "bufio"
    "crypto/tls"
    "flag"
    "log"
    "os"
    gochat "roomchat"
    "strings"
    "sync"
    "time"
)

type client struct {
    // addr of the remote server.
    addr string

    // tlsConf used on every dial.
    tlsConf *tls.Config

    // allowance is for how long after a disconnect the client keeps
    // trying to resume its session. This is independent from the
    // server's own idle timeout.
    allowance time.Duration

    // token issued by the server on login, if any.
    token string

    // tokenMutex synchronizes access to `token`.
    tokenMutex sync.Mutex

    // conn currently in use.
    conn *tls.Conn

    // connMutex synchronizes access to `conn`.
    connMutex sync.Mutex
}

// setToken remember the session token issued by the server.
func (c *client) setToken(token string) {
    c.tokenMutex.Lock()
    c.token = token
    c.tokenMutex.Unlock()
}

// getToken retrieve the last session token issued by the server.
func (c *client) getToken() string {
    c.tokenMutex.Lock()
    defer c.tokenMutex.Unlock()
    return c.token
}

// dial (or redial) the server.
func (c *client) dial() error {
    conn, err := tls.Dial("tcp", c.addr, c.tlsConf)
    if err != nil {
        return err
    }

    c.connMutex.Lock()
    c.conn = conn
    c.connMutex.Unlock()
    return nil
}

// sendLine forward one line to the server.
func (c *client) sendLine(line string) error {
    c.connMutex.Lock()
    defer c.connMutex.Unlock()

    if c.conn == nil {
        return gochat.ConnEOF
    }
    _, err := c.conn.Write([]byte(line + "\n"))
    return err
}

// recvLoop print every server line, capturing the session token, until
// the connection drops. Reports whether the drop was a clean QUIT.
func (c *client) recvLoop() bool {
    reader := bufio.NewReader(c.conn)

    for {
        line, err := reader.ReadString('\n')
        if err != nil {
            return false
        }
        line = strings.TrimRight(line, "\r\n")

        if strings.HasPrefix(line, gochat.RespToken + " ") {
            c.setToken(strings.TrimPrefix(line, gochat.RespToken + " "))
        }

        os.Stdout.WriteString(line + "\n")

        if line == gochat.RespGoodbye {
            return true
        }
    }
}

// resume redial and re-authenticate with the session token, retrying
// until the reconnect allowance runs out.
func (c *client) resume() bool {
    token := c.getToken()
    if token == "" {
        return false
    }

    deadline := time.Now().Add(c.allowance)
    for time.Now().Before(deadline) {
        err := c.dial()
        if err != nil {
            log.Printf("Couldn't reconnect, retrying: %+v", err)
            time.Sleep(time.Second * 5)
            continue
        }

        err = c.sendLine(gochat.CmdTokenAuth + " " + token)
        if err != nil {
            continue
        }
        return true
    }

    return false
}

func main() {
    addr := flag.String("addr", "localhost:8888", "address of the chat server")
    insecure := flag.Bool("insecure", false, "skip TLS certificate verification (self-signed servers)")
    allowance := flag.Duration("reconnect-allowance", time.Minute * 5, "for how long to keep trying to resume a dropped session")
    flag.Parse()

    log.SetFlags(0)

    c := &client {
        addr: *addr,
        tlsConf: &tls.Config {
            InsecureSkipVerify: *insecure,
        },
        allowance: *allowance,
    }

    err := c.dial()
    if err != nil {
        log.Fatalf("Couldn't connect to '%s': %+v", *addr, err)
    }

    // Forward stdin to the server.
    go func() {
        stdin := bufio.NewScanner(os.Stdin)
        for stdin.Scan() {
            err := c.sendLine(stdin.Text())
            if err != nil {
                log.Printf("Couldn't send: %+v", err)
            }
        }
    } ()

    for {
        clean := c.recvLoop()
        if clean {
            return
        }

        log.Printf("Connection lost...")
        if !c.resume() {
            log.Fatalf("Couldn't resume the session")
        }
        log.Printf("Session resumed")
    }
}
