// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteAbout is the about page route.
	RouteAbout = "/about"
	// RouteNews is the public news route.
	RouteNews = "/news"
	// RouteDocuments is the public documents route.
	RouteDocuments = "/documents"
	// RouteEvents is the public events route.
	RouteEvents = "/events"
	// RouteDeputies is the public deputies route.
	RouteDeputies = "/deputies"
	// RouteFAQ is the public FAQ route.
	RouteFAQ = "/faq"
	// RouteSearch is the site search route.
	RouteSearch = "/search"
	// RouteHealthz is the health check route.
	RouteHealthz = "/healthz"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteNewsID is the news detail route pattern.
	RouteNewsID = RouteNews + RouteParamID
	// RouteDeputiesID is the deputy detail route pattern.
	RouteDeputiesID = RouteDeputies + RouteParamID

	// RouteAuth is the auth route group prefix.
	RouteAuth = "/auth"
	// RouteLogin is the login route (within the auth group).
	RouteLogin = "/login"
	// RouteRegister is the registration route (within the auth group).
	RouteRegister = "/register"
	// RouteLogout is the logout route (within the auth group).
	RouteLogout = "/logout"

	// RouteAdmin is the admin route group prefix.
	RouteAdmin = "/admin"
	// RouteAdminLog is the admin event log route (within the admin group).
	// "/events" is taken by the events CRUD resource.
	RouteAdminLog = "/log"

	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteSuffixDelete is the suffix for delete routes.
	RouteSuffixDelete = "/delete"
)

const (
	redirectHome     = RouteRoot
	redirectAdmin    = RouteAdmin
	redirectLogin    = RouteAuth + RouteLogin
	redirectRegister = RouteAuth + RouteRegister
)

// HeaderContentType is the Content-Type HTTP header name.
const HeaderContentType = "Content-Type"
