package api

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/harborline/checkoutd/paymentrequest"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("API")

// AuthCookieName is the name for the authentication cookie.
const AuthCookieName = "Checkoutd_Auth_Cookie"

// GatewayConfig holds the Gateway options.
type GatewayConfig struct {
	Listener   net.Listener
	NoCors     bool
	AllowedIPs map[string]bool
	Cookie     string
	Username   string
	Password   string
	UseSSL     bool
	SSLCert    string
	SSLKey     string
}

// Gateway represents the HTTP API gateway the storefront forwards wallet
// payment-request events to.
type Gateway struct {
	listener net.Listener
	manager  *paymentrequest.Manager
	handler  http.Handler
	config   *GatewayConfig
	hub      *hub
}

// NewGateway instantiates a new gateway over the given payment request
// manager.
func NewGateway(manager *paymentrequest.Manager, config *GatewayConfig) (*Gateway, error) {
	g := &Gateway{
		manager:  manager,
		config:   config,
		listener: config.Listener,
		hub:      newHub(),
	}

	r := g.newV1Router()
	if !config.NoCors {
		r.Use(g.CORSAllowAllOriginsMiddleware)
	}
	r.Use(g.AuthenticationMiddleware)

	topMux := http.NewServeMux()
	topMux.Handle("/v1/", r)
	g.handler = topMux

	go g.hub.run()
	return g, nil
}

// Close shuts down the Gateway listener.
func (g *Gateway) Close() error {
	return g.listener.Close()
}

// Serve begins listening on the configured address.
func (g *Gateway) Serve() error {
	log.Infof("Gateway/API server listening on %s\n", g.listener.Addr())
	var err error
	if g.config.UseSSL {
		err = http.ServeTLS(g.listener, g.handler, g.config.SSLCert, g.config.SSLKey)
	} else {
		err = http.Serve(g.listener, g.handler)
	}
	return err
}

// NotifyWebsockets broadcasts the JSON serialization of i to all connected
// websockets.
func (g *Gateway) NotifyWebsockets(i interface{}) error {
	out, err := marshalAndSanitizeJSON(i)
	if err != nil {
		return err
	}
	g.hub.Broadcast <- out
	return nil
}

func (g *Gateway) newV1Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/v1/paymentrequest/{checkoutID}", g.handleGETPaymentRequest).Methods("GET")
	r.HandleFunc("/v1/paymentrequest/{checkoutID}/status", g.handleGETStatus).Methods("GET")
	r.HandleFunc("/v1/paymentrequest/{checkoutID}/refresh", g.handlePOSTRefresh).Methods("POST")
	r.HandleFunc("/v1/paymentrequest/{checkoutID}/shippingaddress", g.handlePOSTShippingAddress).Methods("POST")
	r.HandleFunc("/v1/paymentrequest/{checkoutID}/shippingoption", g.handlePOSTShippingOption).Methods("POST")
	r.HandleFunc("/v1/paymentrequest/{checkoutID}/paymentmethod", g.handlePOSTPaymentMethod).Methods("POST")
	r.HandleFunc("/v1/ws", g.handleGETWebsocket).Methods("GET")
	return r
}

// AuthenticationMiddleware is a function which will be called for each
// request. It checks if the IP is on the whitelist and validates either the
// cookie authentication or basic authentication, if set in the config.
func (g *Gateway) AuthenticationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(g.config.AllowedIPs) > 0 {
			remoteAddr := strings.Split(r.RemoteAddr, ":")
			if !g.config.AllowedIPs[remoteAddr[0]] {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
		}
		if g.config.Cookie != "" {
			cookie, err := r.Cookie(AuthCookieName)
			if err != nil || g.config.Cookie != cookie.Value {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
		}
		if g.config.Username != "" && g.config.Password != "" {
			username, password, ok := r.BasicAuth()
			h := sha256.Sum256([]byte(password))
			password = hex.EncodeToString(h[:])
			if !ok || username != g.config.Username || password != g.config.Password {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// CORSAllowAllOriginsMiddleware allows any origin. The API carries no
// secrets beyond its own auth settings; the storefront runs on a different
// origin in development.
func (g *Gateway) CORSAllowAllOriginsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
