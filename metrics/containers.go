package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespaceContainer = "container"
	containerName      = "name"
	containerAccess    = "access"
)

type ContainerAccess string

const (
	ContainerAccessRead  ContainerAccess = "read"
	ContainerAccessWrite ContainerAccess = "write"
)

var (
	MetricContainerAcquireTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespaceContainer,
		Name:      "container_acquire_total",
		Help:      "Total number of proxy acquisitions attempted against a container.",
	}, []string{containerName, containerAccess})

	MetricContainerAcquireFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespaceContainer,
		Name:      "container_acquire_failed_total",
		Help:      "Total number of proxy acquisitions refused or abandoned.",
	}, []string{containerName, containerAccess})

	MetricContainerReleaseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespaceContainer,
		Name:      "container_release_total",
		Help:      "Total number of proxy releases against a container.",
	}, []string{containerName, containerAccess})

	MetricContainerProxiesLive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespaceContainer,
		Name:      "container_proxies_live",
		Help:      "Number of live access proxies per container.",
	}, []string{containerName, containerAccess})

	MetricMetaLockAcquireTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespaceContainer,
		Name:      "meta_lock_acquire_total",
		Help:      "Total number of acquisitions attempted against a meta-lock gate.",
	}, []string{containerName, containerAccess})

	MetricMetaLockAcquireFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespaceContainer,
		Name:      "meta_lock_acquire_failed_total",
		Help:      "Total number of meta-lock gate acquisitions refused or abandoned.",
	}, []string{containerName, containerAccess})
)
