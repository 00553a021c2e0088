// Package docs регистрирует OpenAPI документ Pajama Party API для fiber-swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/health": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Health check",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "503": {
                        "description": "Dependency down"
                    }
                }
            }
        },
        "/api/stations/search": {
            "get": {
                "tags": [
                    "Stations"
                ],
                "summary": "Поиск станций",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Поисковый запрос",
                        "name": "q",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "ISO код страны",
                        "name": "country",
                        "in": "query",
                        "required": false
                    },
                    {
                        "type": "integer",
                        "description": "Максимум результатов",
                        "name": "limit",
                        "in": "query",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/utils.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/places/search": {
            "get": {
                "tags": [
                    "Places"
                ],
                "summary": "Поиск мест",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Поисковый запрос",
                        "name": "q",
                        "in": "query",
                        "required": false
                    },
                    {
                        "type": "string",
                        "description": "Категория",
                        "name": "category",
                        "in": "query",
                        "required": false
                    },
                    {
                        "type": "integer",
                        "description": "Максимум результатов",
                        "name": "limit",
                        "in": "query",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/dreams": {
            "post": {
                "tags": [
                    "Dreams"
                ],
                "summary": "Отправить мечту",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Мечта",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.DreamRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/utils.ErrorResponse"
                        }
                    }
                }
            },
            "get": {
                "tags": [
                    "Dreams"
                ],
                "summary": "Список мечт",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Размер страницы",
                        "name": "limit",
                        "in": "query",
                        "required": false
                    },
                    {
                        "type": "integer",
                        "description": "Смещение",
                        "name": "offset",
                        "in": "query",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/dreams/geojson": {
            "get": {
                "tags": [
                    "Map"
                ],
                "summary": "GeoJSON слоя мечт",
                "produces": [
                    "application/geo+json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/dreams/tiles/{z}/{x}/{y}.pbf": {
            "get": {
                "tags": [
                    "Map"
                ],
                "summary": "Векторный тайл мечт",
                "produces": [
                    "application/x-protobuf"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Zoom",
                        "name": "z",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "X",
                        "name": "x",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "Y",
                        "name": "y",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "gzip MVT"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/utils.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/critical-mass": {
            "get": {
                "tags": [
                    "Map"
                ],
                "summary": "Готовность станций",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Максимум станций",
                        "name": "limit",
                        "in": "query",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/heatmap": {
            "get": {
                "tags": [
                    "Map"
                ],
                "summary": "Тепловая карта спроса",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Точек на маршрут",
                        "name": "samples",
                        "in": "query",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/reality/map": {
            "get": {
                "tags": [
                    "Map"
                ],
                "summary": "Сеть ночных поездов",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "503": {
                        "description": "Unavailable",
                        "schema": {
                            "$ref": "#/definitions/utils.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/reality-network.geojson": {
            "get": {
                "tags": [
                    "Map"
                ],
                "summary": "Сеть ночных поездов (файл)",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/stats": {
            "get": {
                "tags": [
                    "Statistics"
                ],
                "summary": "Platform statistics",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/analytics/events": {
            "post": {
                "tags": [
                    "Analytics"
                ],
                "summary": "Событие аналитики",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Событие",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.AnalyticsEventRequest"
                        }
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Accepted"
                    },
                    "204": {
                        "description": "Dropped without consent"
                    }
                }
            }
        },
        "/api/analytics/advocacy": {
            "get": {
                "tags": [
                    "Analytics"
                ],
                "summary": "Сводка для кампании",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Размер топов",
                        "name": "limit",
                        "in": "query",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/export/map.png": {
            "get": {
                "tags": [
                    "Export"
                ],
                "summary": "PNG карты для соцсетей",
                "produces": [
                    "image/png"
                ],
                "parameters": [
                    {
                        "type": "number",
                        "description": "Широта",
                        "name": "lat",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "number",
                        "description": "Долгота",
                        "name": "lng",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "number",
                        "description": "Zoom",
                        "name": "zoom",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "Ширина",
                        "name": "width",
                        "in": "query",
                        "required": false
                    },
                    {
                        "type": "integer",
                        "description": "Высота",
                        "name": "height",
                        "in": "query",
                        "required": false
                    },
                    {
                        "type": "string",
                        "description": "Заголовок",
                        "name": "title",
                        "in": "query",
                        "required": false
                    },
                    {
                        "type": "string",
                        "description": "Подзаголовок",
                        "name": "subtitle",
                        "in": "query",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "PNG"
                    },
                    "502": {
                        "description": "Map capture failed",
                        "schema": {
                            "$ref": "#/definitions/utils.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/export/share": {
            "get": {
                "tags": [
                    "Export"
                ],
                "summary": "Ссылки «поделиться»",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Адрес страницы",
                        "name": "url",
                        "in": "query",
                        "required": false
                    },
                    {
                        "type": "string",
                        "description": "Текст",
                        "name": "text",
                        "in": "query",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        }
    },
    "definitions": {
        "utils.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "$ref": "#/definitions/errors.AppError"
                }
            }
        },
        "errors.AppError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "details": {
                    "type": "object",
                    "additionalProperties": true
                }
            }
        },
        "dto.DreamRequest": {
            "type": "object",
            "properties": {
                "dreamer_name": {
                    "type": "string"
                },
                "origin_station": {
                    "type": "string"
                },
                "destination_city": {
                    "type": "string"
                },
                "origin_lat": {
                    "type": "number"
                },
                "origin_lng": {
                    "type": "number"
                },
                "destination_lat": {
                    "type": "number"
                },
                "destination_lng": {
                    "type": "number"
                },
                "email": {
                    "type": "string"
                },
                "join_pajama_party": {
                    "type": "boolean"
                }
            }
        },
        "dto.AnalyticsEventRequest": {
            "type": "object",
            "required": [
                "event_type"
            ],
            "properties": {
                "event_type": {
                    "type": "string"
                },
                "session_id": {
                    "type": "string"
                },
                "properties": {
                    "type": "object",
                    "additionalProperties": true
                },
                "consent": {
                    "type": "boolean"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Pajama Party Platform API",
	Description:      "Мечты о ночных поездах: станции, мечты, слои карты, статистика, аналитика и экспорт.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
