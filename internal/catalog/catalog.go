// Package catalog holds the static mapping from (provider, platform, service)
// to the provider-specific numeric service id. Pure lookup, no I/O.
package catalog

import (
	"strings"

	"smm-storefront/internal/domain"
	"smm-storefront/internal/domain/model"
)

type key struct {
	platform model.Platform
	service  model.ServiceType
}

type Catalog struct {
	entries map[string]map[key]int64
}

// Default returns the catalog for the two supported panels. Absence of an
// entry means the combination is unsupported by that provider and resolves to
// a domain.UnsupportedServiceError, never a silent zero.
func Default() *Catalog {
	return &Catalog{entries: map[string]map[key]int64{
		"boostapi": {
			{model.PlatformInstagram, model.ServiceFollowers}: 2183,
			{model.PlatformInstagram, model.ServiceLikes}:     2196,
			{model.PlatformInstagram, model.ServiceViews}:     2201,
			{model.PlatformTikTok, model.ServiceFollowers}:    3412,
			{model.PlatformTikTok, model.ServiceLikes}:        3418,
			{model.PlatformTikTok, model.ServiceViews}:        3424,
			{model.PlatformYouTube, model.ServiceSubscribers}: 4105,
			{model.PlatformYouTube, model.ServiceLikes}:       4111,
			{model.PlatformYouTube, model.ServiceViews}:       4118,
		},
		"smmglow": {
			{model.PlatformInstagram, model.ServiceFollowers}: 801,
			{model.PlatformInstagram, model.ServiceLikes}:     805,
			{model.PlatformInstagram, model.ServiceViews}:     809,
			{model.PlatformInstagram, model.ServiceComments}:  812,
			{model.PlatformTikTok, model.ServiceFollowers}:    911,
			{model.PlatformTikTok, model.ServiceLikes}:        915,
			{model.PlatformYouTube, model.ServiceSubscribers}: 1021,
			{model.PlatformYouTube, model.ServiceViews}:       1027,
		},
	}}
}

// NormalizeService maps a raw service string to the canonical service type for
// the given platform. On YouTube "followers" and "subscribers" are synonyms;
// the catalog keys YouTube audience growth under subscribers.
func NormalizeService(platform model.Platform, rawService string) (model.ServiceType, bool) {
	svc, ok := model.ParseServiceType(rawService)
	if !ok {
		return "", false
	}
	if platform == model.PlatformYouTube && svc == model.ServiceFollowers {
		svc = model.ServiceSubscribers
	}
	if platform != model.PlatformYouTube && svc == model.ServiceSubscribers {
		svc = model.ServiceFollowers
	}
	return svc, true
}

// Resolve returns the upstream service id for (provider, platform, service).
// Inputs are normalized for case and synonyms before lookup.
func (c *Catalog) Resolve(provider, rawPlatform, rawService string) (int64, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	unsupported := &domain.UnsupportedServiceError{
		Provider: provider,
		Platform: strings.ToLower(strings.TrimSpace(rawPlatform)),
		Service:  strings.ToLower(strings.TrimSpace(rawService)),
	}

	platform, ok := model.ParsePlatform(rawPlatform)
	if !ok {
		return 0, unsupported
	}
	svc, ok := NormalizeService(platform, rawService)
	if !ok {
		return 0, unsupported
	}

	services, ok := c.entries[provider]
	if !ok {
		return 0, unsupported
	}
	id, ok := services[key{platform, svc}]
	if !ok {
		return 0, unsupported
	}
	return id, nil
}

// Entries lists the catalog as (provider, platform, service, id) rows in
// unspecified order; used by cmd/seed to print the active mapping.
func (c *Catalog) Entries() []Entry {
	var out []Entry
	for provider, services := range c.entries {
		for k, id := range services {
			out = append(out, Entry{
				Provider:  provider,
				Platform:  k.platform,
				Service:   k.service,
				ServiceID: id,
			})
		}
	}
	return out
}

type Entry struct {
	Provider  string
	Platform  model.Platform
	Service   model.ServiceType
	ServiceID int64
}
