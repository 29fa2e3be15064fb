package main

import (
    "crypto/tls"
    "io"
    "log"
    "net"
    "os"
    gochat "roomchat"
    tls_conn "roomchat/tls-conn"
    "time"
)

type runningServer struct {
    // The TLS listener accepting new connections.
    listener net.Listener

    // The chat server.
    chat gochat.ChatServer
}

// accept connections until the listener gets closed, spawning one
// handling goroutine per connection.
func (s *runningServer) accept(idleTimeout time.Duration) {
    for {
        conn, err := s.listener.Accept()
        if err != nil {
            log.Printf("Listener stopped: %+v", err)
            return
        }

        log.Printf("New client connected: %s", conn.RemoteAddr())
        go s.chat.Handle(tls_conn.NewConn(conn, idleTimeout))
    }
}

// Halts the listener and the chat server.
func (s *runningServer) Close() error {
    if s.listener != nil {
        s.listener.Close()
        s.listener = nil
    }
    if s.chat != nil {
        s.chat.Close()
        s.chat = nil
    }

    return nil
}

// serve start the chat server and its TLS listener.
func serve(conf Config) io.Closer {
    err := os.MkdirAll(conf.DataDir, 0755)
    if err != nil {
        log.Fatalf("Couldn't create the data directory '%s': %+v", conf.DataDir, err)
    }

    logger := log.New(os.Stdout, "", log.LstdFlags)

    users, err := gochat.NewFileUserStore(conf.UsersFile, logger)
    if err != nil {
        log.Fatalf("Couldn't load the user file '%s': %+v", conf.UsersFile, err)
    }

    chatConf := gochat.GetDefaultServerConf()
    chatConf.Auth = users
    chatConf.Bot = gochat.NewOllamaClient(conf.OllamaURL, conf.OllamaModel, 0)
    chatConf.Logger = logger
    chatConf.DebugLog = conf.DebugLog

    cert, err := tls.LoadX509KeyPair(conf.CertFile, conf.KeyFile)
    if err != nil {
        log.Fatalf("Couldn't load the TLS key pair: %+v", err)
    }

    ln, err := tls.Listen("tcp", conf.Addr, &tls.Config {
        Certificates: []tls.Certificate{cert},
        MinVersion: tls.VersionTLS12,
    })
    if err != nil {
        log.Fatalf("Couldn't listen on '%s': %+v", conf.Addr, err)
    }

    srv := &runningServer {
        listener: ln,
        chat: gochat.NewServerConf(chatConf),
    }
    go srv.accept(conf.IdleTimeout)

    log.Printf("Chat server started on %s", conf.Addr)
    return srv
}
