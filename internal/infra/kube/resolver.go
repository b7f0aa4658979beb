// Package kube resolves the orchestration API address from cluster credentials.
package kube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/CarterFendley/pipelines/internal/domain"
	"github.com/CarterFendley/pipelines/internal/ports"
)

const (
	// DefaultHost is used once credentials load but no proxy hostname is published.
	DefaultHost = "http://localhost:8888"

	InverseProxyConfigMap = "inverse-proxy-config"
	inverseProxyHostKey   = "Hostname"
)

// Resolver loads in-cluster credentials, falling back to the local kubeconfig.
type Resolver struct {
	inCluster  func() (*rest.Config, error)
	kubeconfig func() (*rest.Config, error)
	newClient  func(*rest.Config) (kubernetes.Interface, error)
	log        *slog.Logger
}

type Option func(*Resolver)

func WithInClusterLoader(f func() (*rest.Config, error)) Option {
	return func(r *Resolver) { r.inCluster = f }
}

func WithKubeconfigLoader(f func() (*rest.Config, error)) Option {
	return func(r *Resolver) { r.kubeconfig = f }
}

func WithClientFactory(f func(*rest.Config) (kubernetes.Interface, error)) Option {
	return func(r *Resolver) { r.newClient = f }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		inCluster:  rest.InClusterConfig,
		kubeconfig: loadKubeconfig,
		newClient: func(c *rest.Config) (kubernetes.Interface, error) {
			return kubernetes.NewForConfig(c)
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ports.EndpointResolver = (*Resolver)(nil)

// Resolve returns the API host for namespace. Credential failures are fatal and not retried.
func (r *Resolver) Resolve(ctx context.Context, namespace string) (string, error) {
	cfg, err := r.inCluster()
	if err != nil {
		r.log.Debug("kube.incluster.unavailable", "err", err)
		var kerr error
		cfg, kerr = r.kubeconfig()
		if kerr != nil {
			return "", &domain.OpError{
				Op:   "kube.resolve",
				Kind: domain.KindCredentials,
				Err:  fmt.Errorf("%w: %w", domain.ErrCredentials, errors.Join(err, kerr)),
			}
		}
	}

	client, err := r.newClient(cfg)
	if err != nil {
		return "", &domain.OpError{
			Op:   "kube.resolve",
			Kind: domain.KindCredentials,
			Err:  fmt.Errorf("%w: %w", domain.ErrCredentials, err),
		}
	}

	cm, err := client.CoreV1().ConfigMaps(namespace).Get(ctx, InverseProxyConfigMap, metav1.GetOptions{})
	if err != nil {
		r.log.Debug("kube.inverse_proxy.unavailable", "namespace", namespace, "err", err)
		return DefaultHost, nil
	}

	host := strings.TrimSpace(cm.Data[inverseProxyHostKey])
	if host == "" {
		return DefaultHost, nil
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return strings.TrimRight(host, "/"), nil
}

func loadKubeconfig() (*rest.Config, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{}).ClientConfig()
}
