// Command ytextract implements http server exposing the extraction API
package main

import (
	"flag"
	"log"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"strings"
	"time"

	"github.com/artyom/autoflags"
	"github.com/artyom/useragent"
	"github.com/gorilla/handlers"
	"github.com/vidmeta/ytextract"
)

func main() {
	args := struct {
		Listen     string        `flag:"listen,address to listen"`
		Pprof      string        `flag:"pprof,address to serve pprof data"`
		Timeout    time.Duration `flag:"timeout,timeout for remote i/o"`
		Proxy      string        `flag:"proxy,outbound proxy url used by requests that set use_proxy"`
		Languages  string        `flag:"languages,comma-separated preferred transcript languages"`
		RequireKey bool          `flag:"requireKey,reject requests without X-API-Key header"`
		UserAgent  string        `flag:"ua,User-Agent header for outgoing requests"`
	}{
		Listen:    "localhost:8080",
		Pprof:     "localhost:6060",
		Timeout:   30 * time.Second,
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) ytextract/1.0",
	}
	autoflags.Define(&args)
	flag.Parse()

	if args.Timeout < 0 {
		args.Timeout = 0
	}
	httpClient := &http.Client{
		Timeout: args.Timeout,
		Transport: useragent.Set(&http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}, args.UserAgent),
	}
	configs := []ytextract.ConfFunc{
		ytextract.WithLogger(log.New(os.Stderr, "", log.LstdFlags)),
		ytextract.WithHTTPClient(httpClient),
	}
	if args.Proxy != "" {
		log.Print("Enable proxy at ", args.Proxy)
		configs = append(configs, ytextract.WithProxy(args.Proxy))
	}
	if args.Languages != "" {
		configs = append(configs, ytextract.WithLanguages(strings.Split(args.Languages, ",")...))
	}
	if args.RequireKey {
		configs = append(configs, ytextract.WithRequireAPIKey())
	}

	handler := ytextract.New(configs...)
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-API-Key"}),
	)
	if args.Pprof != "" {
		go func(addr string) { log.Println(http.ListenAndServe(addr, nil)) }(args.Pprof)
	}

	srv := &http.Server{
		Addr:         args.Listen,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  30 * time.Second,
		Handler:      cors(handler),
	}
	log.Fatal(srv.ListenAndServe())
}
