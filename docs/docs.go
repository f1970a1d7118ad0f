// Package docs registers the OpenAPI document served by /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/stats/global": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Global statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.GlobalStats"}}
                }
            }
        },
        "/stats/daily-averages": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Highest and lowest daily article averages by country",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.DailyAverages"}}
                }
            }
        },
        "/countries/top": {
            "get": {
                "produces": ["application/json"],
                "tags": ["countries"],
                "summary": "Countries with the most coverage",
                "parameters": [
                    {"type": "integer", "description": "Maximum countries (1-100)", "name": "limit", "in": "query"},
                    {"type": "string", "name": "start_date", "in": "query"},
                    {"type": "string", "name": "end_date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/api.Country"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Error"}}
                }
            }
        },
        "/countries/{code}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["countries"],
                "summary": "Coverage of one country",
                "parameters": [
                    {"type": "string", "description": "ISO 3166 alpha-2 or alpha-3 code", "name": "code", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Country"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.Error"}}
                }
            }
        },
        "/countries/{code}/time-stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["countries"],
                "summary": "Daily timeline and recent articles of one country",
                "parameters": [
                    {"type": "string", "name": "code", "in": "path", "required": true},
                    {"type": "string", "name": "start_date", "in": "query"},
                    {"type": "string", "name": "end_date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.CountryTimeStats"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.Error"}}
                }
            }
        },
        "/continents": {
            "get": {
                "produces": ["application/json"],
                "tags": ["countries"],
                "summary": "Coverage grouped by continent",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/api.Continent"}}}
                }
            }
        },
        "/sources/grouped": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sources"],
                "summary": "Articles grouped by source, country or author",
                "parameters": [
                    {"type": "string", "enum": ["author", "country"], "name": "group_by", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.GroupedSources"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Error"}}
                }
            }
        },
        "/sources/analysis": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sources"],
                "summary": "Per-source analysis with optional filters",
                "parameters": [
                    {"description": "Filters", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/api.AnalysisRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/api.SourceAnalysis"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Error"}}
                }
            }
        },
        "/trends/compare": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Compare two timeframes",
                "parameters": [
                    {"description": "Timeframes", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.CompareRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Comparison"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Error"}}
                }
            }
        },
        "/articles/recent": {
            "get": {
                "produces": ["application/json"],
                "tags": ["articles"],
                "summary": "Most recent articles",
                "parameters": [
                    {"type": "integer", "name": "days", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/api.Article"}}}
                }
            }
        },
        "/articles/historical": {
            "get": {
                "produces": ["application/json"],
                "tags": ["articles"],
                "summary": "Timeline with top sources and countries",
                "parameters": [
                    {"type": "integer", "name": "days", "in": "query"},
                    {"type": "string", "enum": ["hour", "day", "week", "month"], "name": "interval", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Historical"}}
                }
            }
        },
        "/admin/cache/refresh": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Refresh caches",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.CacheRefresh"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.Error"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.Error"}}
                }
            }
        }
    },
    "definitions": {
        "api.Error": {"type": "object", "properties": {"error": {"type": "string"}}},
        "api.Country": {
            "type": "object",
            "properties": {
                "id": {"type": "string"}, "code": {"type": "string"}, "iso2": {"type": "string"},
                "name": {"type": "string"}, "continent": {"type": "string"},
                "value": {"type": "integer"}, "averageTone": {"type": "number"}
            }
        },
        "api.Continent": {
            "type": "object",
            "properties": {
                "name": {"type": "string"}, "value": {"type": "integer"}, "averageTone": {"type": "number"},
                "countries": {"type": "array", "items": {"$ref": "#/definitions/api.Country"}}
            }
        },
        "api.GlobalStats": {
            "type": "object",
            "properties": {
                "totalArticles": {"type": "integer"}, "countries": {"type": "integer"},
                "averagePerCountry": {"type": "number"},
                "topCountries": {"type": "array", "items": {"$ref": "#/definitions/api.Country"}},
                "continents": {"type": "array", "items": {"$ref": "#/definitions/api.Continent"}}
            }
        },
        "api.TimelinePoint": {
            "type": "object",
            "properties": {"date": {"type": "string"}, "count": {"type": "integer"}, "tone": {"type": "number"}}
        },
        "api.ArticleRef": {
            "type": "object",
            "properties": {
                "title": {"type": "string"}, "url": {"type": "string"}, "date": {"type": "string"},
                "source": {"type": "string"}, "tone": {"type": "number"}
            }
        },
        "api.CountryTimeStats": {
            "type": "object",
            "properties": {
                "code": {"type": "string"}, "name": {"type": "string"},
                "articleCount": {"type": "integer"}, "averageTone": {"type": "number"},
                "timelineData": {"type": "array", "items": {"$ref": "#/definitions/api.TimelinePoint"}},
                "articles": {"type": "array", "items": {"$ref": "#/definitions/api.ArticleRef"}}
            }
        },
        "api.GroupedSource": {
            "type": "object",
            "properties": {
                "name": {"type": "string"}, "articleCount": {"type": "integer"}, "averageTone": {"type": "number"},
                "lastArticleDate": {"type": "string"},
                "recentArticles": {"type": "array", "items": {"$ref": "#/definitions/api.ArticleRef"}}
            }
        },
        "api.Pagination": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"}, "page": {"type": "integer"},
                "limit": {"type": "integer"}, "totalPages": {"type": "integer"}
            }
        },
        "api.GroupedSources": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/api.GroupedSource"}},
                "pagination": {"$ref": "#/definitions/api.Pagination"}
            }
        },
        "api.AnalysisRequest": {
            "type": "object",
            "properties": {
                "startDate": {"type": "string"}, "endDate": {"type": "string"},
                "country": {"type": "string"}, "author": {"type": "string"}
            }
        },
        "api.SourceAnalysis": {
            "type": "object",
            "properties": {
                "source": {"type": "string"}, "country": {"type": "string"},
                "articleCount": {"type": "integer"}, "averageTone": {"type": "number"},
                "lastArticleDate": {"type": "string"},
                "recentArticles": {"type": "array", "items": {"$ref": "#/definitions/api.ArticleRef"}}
            }
        },
        "api.DailyAverage": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "country": {"type": "string"}, "averageArticles": {"type": "number"}}
        },
        "api.DailyAverages": {
            "type": "object",
            "properties": {
                "highest": {"type": "array", "items": {"$ref": "#/definitions/api.DailyAverage"}},
                "lowest": {"type": "array", "items": {"$ref": "#/definitions/api.DailyAverage"}}
            }
        },
        "api.DateRange": {
            "type": "object",
            "properties": {"startDate": {"type": "string"}, "endDate": {"type": "string"}}
        },
        "api.CompareRequest": {
            "type": "object",
            "properties": {
                "timeframe1": {"$ref": "#/definitions/api.DateRange"},
                "timeframe2": {"$ref": "#/definitions/api.DateRange"}
            }
        },
        "api.DailyCount": {
            "type": "object",
            "properties": {"date": {"type": "string"}, "articleCount": {"type": "integer"}, "averageTone": {"type": "number"}}
        },
        "api.Timeframe": {
            "type": "object",
            "properties": {
                "startDate": {"type": "string"}, "endDate": {"type": "string"}, "articleCount": {"type": "integer"},
                "dailyData": {"type": "array", "items": {"$ref": "#/definitions/api.DailyCount"}}
            }
        },
        "api.Comparison": {
            "type": "object",
            "properties": {
                "timeframe1": {"$ref": "#/definitions/api.Timeframe"},
                "timeframe2": {"$ref": "#/definitions/api.Timeframe"}
            }
        },
        "api.Article": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"}, "gdeltId": {"type": "string"}, "title": {"type": "string"},
                "url": {"type": "string"}, "sourceName": {"type": "string"}, "sourceCountry": {"type": "string"},
                "authors": {"type": "array", "items": {"type": "string"}},
                "themes": {"type": "array", "items": {"type": "string"}},
                "tone": {"type": "number"}, "score": {"type": "number"}, "flagged": {"type": "boolean"},
                "date": {"type": "string"}
            }
        },
        "api.SourceCount": {"type": "object", "properties": {"source": {"type": "string"}, "count": {"type": "integer"}}},
        "api.CountryCount": {"type": "object", "properties": {"country": {"type": "string"}, "count": {"type": "integer"}}},
        "api.Historical": {
            "type": "object",
            "properties": {
                "timeline": {"type": "array", "items": {"$ref": "#/definitions/api.TimelinePoint"}},
                "topSources": {"type": "array", "items": {"$ref": "#/definitions/api.SourceCount"}},
                "topCountries": {"type": "array", "items": {"$ref": "#/definitions/api.CountryCount"}}
            }
        },
        "api.CacheRefresh": {"type": "object", "properties": {"purged": {"type": "integer"}, "reloaded": {"type": "boolean"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT bearer token with role admin. Header format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "mediawatch API",
	Description:      "News coverage statistics by country, continent and source, built from GDELT event data.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
